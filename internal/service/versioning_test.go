package service

import (
	"testing"

	"governance/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNextRecordVersion(t *testing.T) {
	cases := []struct {
		current string
		kind    model.VersionKind
		want    string
	}{
		{"1.0", model.VersionMinor, "1.1"},
		{"1.9", model.VersionMinor, "2.0"},
		{"2.3", model.VersionMajor, "3.0"},
		{"1.0", model.VersionMajor, "2.0"},
		{" 4.5 ", model.VersionMinor, "4.6"},
		{"garbage", model.VersionMinor, "2.0"},
		{"", model.VersionMajor, "2.0"},
		{"1.0", model.VersionKind("Patch"), "2.0"},
		// float64 rounding, as stored versions were produced
		{"0.15", model.VersionMinor, "0.2"},
		{"1.25", model.VersionMinor, "1.4"},
		{"2.99999999999999999", model.VersionMajor, "4.0"},
		{"2.7", model.VersionMajor, "3.0"},
		{"NaN", model.VersionMinor, "2.0"},
		{"Inf", model.VersionMajor, "2.0"},
	}
	for _, tc := range cases {
		t.Run(tc.current+"/"+string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, NextRecordVersion(tc.current, tc.kind))
		})
	}
}

func TestNextApprovalVersion(t *testing.T) {
	assert.Equal(t, "u1", NextApprovalVersion(nil))
	assert.Equal(t, "u3", NextApprovalVersion([]string{"u1", "u2"}))
	assert.Equal(t, "u5", NextApprovalVersion([]string{"u4", "u1.1", "u2"}), "edit versions are not part of the sequence")
	assert.Equal(t, "u11", NextApprovalVersion([]string{"u9", "u10", "x7", "U12"}))
}

func TestHighestRecordVersion(t *testing.T) {
	versions := []model.Compliance{{Version: "1.9"}, {Version: "1.10"}, {Version: "bad"}, {Version: "1.2"}}
	assert.Equal(t, "1.9", highestRecordVersion(versions), "versions compare as decimals")
	assert.Equal(t, "", highestRecordVersion(nil))
}
