package main

import "runtime"

// DefaultTriple returns the LLVM target triple of the host.
func DefaultTriple() string {
	return HostTriple(runtime.GOOS, runtime.GOARCH)
}

// HostTriple maps a Go GOOS/GOARCH pair to an LLVM target triple. It returns
// "" for pairs it does not know, which leaves the triple to the backend.
func HostTriple(goos, goarch string) string {
	arch, ok := map[string]string{
		"amd64":   "x86_64",
		"386":     "i686",
		"arm64":   "aarch64",
		"arm":     "armv7",
		"riscv64": "riscv64",
		"ppc64le": "powerpc64le",
		"s390x":   "s390x",
		"wasm":    "wasm32",
	}[goarch]
	if !ok {
		return ""
	}

	switch goos {
	case "linux":
		if goarch == "arm" {
			return arch + "-unknown-linux-gnueabihf"
		}
		return arch + "-unknown-linux-gnu"
	case "darwin":
		if goarch == "arm64" {
			return "arm64-apple-macosx"
		}
		return arch + "-apple-macosx"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "freebsd":
		return arch + "-unknown-freebsd"
	case "js", "wasip1":
		return arch + "-unknown-unknown"
	}
	return ""
}
