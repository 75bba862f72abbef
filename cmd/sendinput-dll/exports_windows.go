//go:build windows && cgo

package main

import "C"

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// _SendInput matches the rundll32 entry point signature
// void CALLBACK fn(HWND, HINSTANCE, LPSTR, int). Only the command line is
// used.
//
//export _SendInput
func _SendInput(hwnd, hinst uintptr, cmdLine *C.char, nCmdShow C.int) {
	if cmdLine == nil {
		return
	}
	handle(windows.BytePtrToString((*byte)(unsafe.Pointer(cmdLine))))
}

// _SendInputW is the variant rundll32 prefers when it exists, taking the
// command line as UTF-16.
//
//export _SendInputW
func _SendInputW(hwnd, hinst uintptr, cmdLine *uint16, nCmdShow C.int) {
	if cmdLine == nil {
		return
	}
	handle(windows.UTF16PtrToString(cmdLine))
}
