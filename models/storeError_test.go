package models

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"gorm.io/gorm"
)

func TestStoreErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"missing row is not found", gorm.ErrRecordNotFound, utils.ErrorRecordNotFound},
		{"bad connection is transient", driver.ErrBadConn, utils.ErrorStoreUnavailable},
		{"timeout is transient", context.DeadlineExceeded, utils.ErrorStoreUnavailable},
		{
			"network failure is transient",
			&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			utils.ErrorStoreUnavailable,
		},
	}
	for _, tc := range cases {
		got := storeError(tc.in)
		if tc.want == nil {
			if got != nil {
				t.Fatalf("%s: got %v, want nil", tc.name, got)
			}
			continue
		}
		if !errors.Is(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStoreErrorLeavesDomainErrorsAlone(t *testing.T) {
	in := errors.New("Duplicate entry 'RPT-0CBE7F' for key 'report_id'")
	if got := storeError(in); got != in {
		t.Fatalf("non-connectivity error was rewritten: %v", got)
	}
}
