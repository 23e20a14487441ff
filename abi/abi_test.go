package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"net"
	"testing"
	"unsafe"
)

func TestGmzConnect_nullHostReturnsZero(t *testing.T) {
	if h := gmz_connect(nil, 1500, 0, 0, 0); h != 0 {
		t.Errorf("gmz_connect(nil host) = %d, want 0", h)
	}
}

func TestGmzConnectEx_invalidEnumReturnsZero(t *testing.T) {
	host := C.CString("127.0.0.1")
	defer C.free(unsafe.Pointer(host))
	if h := gmz_connect_ex(host, 1500, 0, 0, 0, 99); h != 0 {
		t.Errorf("gmz_connect_ex(invalid lz4 mode) = %d, want 0", h)
	}
}

func TestGmzConnectEx_validHostSucceeds(t *testing.T) {
	host := C.CString("127.0.0.1")
	defer C.free(unsafe.Pointer(host))
	h := gmz_connect_ex(host, 1500, 0, 0, 0, 0)
	if h == 0 {
		t.Fatal("gmz_connect_ex(valid host) = 0, want a handle")
	}
	gmz_disconnect(h)
}

func TestGmzDisconnect_unknownHandleIsNoop(t *testing.T) {
	gmz_disconnect(0)
}

func TestGmzSetModeline_nullOnBadHandle(t *testing.T) {
	if got := gmz_set_modeline(0, nil); got != -1 {
		t.Errorf("gmz_set_modeline(bad handle) = %d, want -1", got)
	}
}

func TestGmzWaitSync_badHandleReturnsNegativeOne(t *testing.T) {
	if got := gmz_wait_sync(0, 10); got != -1 {
		t.Errorf("gmz_wait_sync(bad handle) = %d, want -1", got)
	}
}

func TestGmzBeginFrame_badHandleReturnsStalled(t *testing.T) {
	if got := gmz_begin_frame(0); got != 1 {
		t.Errorf("gmz_begin_frame(bad handle) = %d, want 1 (stalled)", got)
	}
}

func TestGmzVersion_reportsConfiguredParts(t *testing.T) {
	if gmz_version_major() < 0 || gmz_version_minor() < 0 || gmz_version_patch() < 0 {
		t.Error("version components should be non-negative")
	}
	cstr := gmz_version()
	defer C.free(unsafe.Pointer(cstr))
	if C.GoString(cstr) == "" {
		t.Error("gmz_version() returned empty string")
	}
}

func TestGmzInputBind_nullHostReturnsZero(t *testing.T) {
	if h := gmz_input_bind(nil, 32101); h != 0 {
		t.Errorf("gmz_input_bind(nil host) = %d, want 0", h)
	}
}

func TestGmzInputPoll_badHandleReturnsNegativeOne(t *testing.T) {
	if got := gmz_input_poll(0); got != -1 {
		t.Errorf("gmz_input_poll(bad handle) = %d, want -1", got)
	}
}

func TestGmzInputBindAndJoy_noSnapshotYetReturnsOne(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()
	addr := pc.LocalAddr().(*net.UDPAddr)

	host := C.CString(addr.IP.String())
	defer C.free(unsafe.Pointer(host))

	h := gmz_input_bind(host, C.int(addr.Port))
	if h == 0 {
		t.Fatal("gmz_input_bind() = 0, want a handle")
	}
	defer gmz_input_close(h)

	if got := gmz_input_joy(h, nil, nil, nil, nil, nil); got != 1 {
		t.Errorf("gmz_input_joy(no snapshot) = %d, want 1", got)
	}
}
