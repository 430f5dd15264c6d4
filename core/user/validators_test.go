package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	LoadCommonPasswords(nil)

	tests := []struct {
		name string
		pwd  string
		want string
	}{
		{name: "too short", pwd: "Ab1!x", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abc 123!", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678901", want: pwdNotAllNumTag},
		{name: "no upper", pwd: "abcdefg1!", want: pwdComplexityTag},
		{name: "no special", pwd: "Abcdefg12", want: pwdComplexityTag},
		{name: "similar to username", pwd: "Trezcool1!", want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd1", want: pwdNoCommonTag},
		{name: "valid", pwd: "Sup3r$ecretX", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkPassword(tt.pwd, "Jane", "trezcool", "jane@test.in")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	LoadCommonPasswords(nil)
	usr := User{Name: "Jane", Username: "jane", Email: "jane@test.in"}

	assert.Equal(t, "", ValidatePassword("Sup3r$ecretX", usr))
	assert.Equal(t, pwdMinLenText, ValidatePassword("short", usr))
	assert.Equal(t, pwdNoCommonText, ValidatePassword("P@ssw0rd1", usr))
}

func TestMainRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  string
	}{
		{name: "none", roles: nil, want: ""},
		{name: "staff", roles: []string{RoleStaff}, want: RoleStaff},
		{name: "highest wins", roles: []string{RoleStaff, RoleAdminOwner, RoleED}, want: RoleAdminOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{Roles: tt.roles}
			assert.Equal(t, tt.want, usr.MainRole())
		})
	}
}

func TestUser_roles(t *testing.T) {
	admin := User{Roles: []string{RoleAdminOwner}}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsED())

	ed := User{Roles: []string{RoleED}}
	assert.True(t, ed.IsED())
	assert.False(t, ed.IsStaff())

	assert.Equal(t, 30, MaxRolePriority([]string{RoleStaff, RoleAdminOwner}))
	assert.Equal(t, 0, MaxRolePriority(nil))
}
