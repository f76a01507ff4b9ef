// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import "bytes"

// NativeCodeSize is the size of a native contract code header.
const NativeCodeSize = 32

// nativeMagic starts every native code header. 0xEF is rejected as the first
// byte of EVM code, so a header never collides with real bytecode.
const nativeMagic = 0xef

// NativeCode returns the code header identifying the named native contract.
// Creation data of a native contract is this header followed by the ABI-encoded constructor args.
func NativeCode(name string) []byte {
	if len(name) == 0 || len(name) > NativeCodeSize-1 {
		panic("vm: invalid native contract name " + name)
	}
	code := make([]byte, NativeCodeSize)
	code[0] = nativeMagic
	copy(code[1:], name)
	return code
}

// ParseNativeCode extracts the native contract name from code.
func ParseNativeCode(code []byte) (string, bool) {
	if len(code) < NativeCodeSize || code[0] != nativeMagic {
		return "", false
	}
	name := code[1:NativeCodeSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	if len(name) == 0 {
		return "", false
	}
	return string(name), true
}
