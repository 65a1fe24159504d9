package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/kns/internal/model"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		status  string
		minRole string
		want    Decision
	}{
		{"approved staff", model.RoleStaff, model.UserApproved, model.RoleStaff, Allow},
		{"pending staff", model.RoleStaff, model.UserPending, model.RoleStaff, Pending},
		{"rejected staff", model.RoleStaff, model.UserRejected, "", Rejected},
		{"staff on admin route", model.RoleStaff, model.UserApproved, model.RoleAdmin, Forbidden},
		{"pending admin", model.RoleAdmin, model.UserPending, model.RoleAdmin, Allow},
		{"no role requirement", model.RoleStaff, model.UserApproved, "", Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Check(&model.User{Role: tc.role, Status: tc.status}, tc.minRole)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want == Allow, got.Message() == "")
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	assert.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}
