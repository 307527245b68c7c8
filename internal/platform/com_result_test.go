package platform

import (
	"errors"
	"testing"

	"github.com/go-ole/go-ole"
)

func TestInitResult(t *testing.T) {
	rpcChanged := ole.NewError(0x80010106) // RPC_E_CHANGED_MODE
	plain := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"S_OK", nil, nil},
		{"S_FALSE is success", ole.NewError(sFalse), nil},
		{"changed mode fails", rpcChanged, rpcChanged},
		{"non COM error passes through", plain, plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := initResult(tt.in); got != tt.want {
				t.Errorf("initResult(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
