package echoapi_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/dashboard/apps/api/echo"
	"github.com/trezcool/dashboard/core/user"
	"github.com/trezcool/dashboard/testutil"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Sleepy", "sleepy", "sleepy@test.in", "Sl33py$ecret", []string{user.RoleStaff}, false)

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username":"this field is required","password":"this field is required"}`),
		},
		{
			name:     "unknown user",
			body:     []byte(`{"username":"nobody","password":"Adm1n$ecret"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     []byte(`{"username":"admin","password":"wrong"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated",
			body:     []byte(`{"username":"sleepy","password":"Sl33py$ecret"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/login"
			app.run(t, tt)
		})
	}

	t.Run("by username or email", func(t *testing.T) {
		for _, uname := range []string{"director", " ED@test.in "} {
			rec := app.run(t, httpTest{
				method: http.MethodPost,
				path:   "/v1/users/login",
				body:   marchallObj(t, echoapi.LoginRequest{Username: uname, Password: "D1rect0r$ecret"}),
			})

			var resp echoapi.LoginResponse
			unmarshal(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, echoapi.SessionUser{Username: "director", Role: user.RoleED, Email: "ed@test.in"}, resp.User)
		}

		usr, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: app.ed.ID})
		require.NoError(t, err)
		assert.False(t, usr.LastLogin.IsZero())
	})
}

func Test_userApi_auth(t *testing.T) {
	app := setup(t)

	t.Run("missing token", func(t *testing.T) {
		app.run(t, httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		})
	})

	t.Run("invalid token", func(t *testing.T) {
		app.run(t, httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
		})
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := testutil.CreateUser(t, app.usrRepo, "Ghost", "ghost", "ghost@test.in", "", nil, true)
		token := app.token(t, ghost)
		_, err := app.usrRepo.DeleteUsersByID(context.Background(), ghost.ID)
		require.NoError(t, err)

		app.run(t, httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    token,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		})
	})

	t.Run("me", func(t *testing.T) {
		app.run(t, httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    app.token(t, app.staff),
			wantData: marchallObj(t, app.staff),
		})
	})

	t.Run("token refresh", func(t *testing.T) {
		rec := app.run(t, httpTest{
			method: http.MethodPost,
			path:   "/v1/users/token-refresh",
			token:  app.token(t, app.admin),
		})
		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin", resp.User.Username)
		assert.Equal(t, user.RoleAdmin, resp.User.Role)
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)
	inactive := testutil.CreateUser(t, app.usrRepo, "Zed", "zed", "zed@test.in", "", []string{user.RoleStaff}, false)

	path := func(v url.Values) string { return "/v1/users?" + v.Encode() }
	adminToken := app.token(t, app.admin)

	tests := []httpTest{
		{
			name:     "not admin",
			path:     path(nil),
			token:    app.token(t, app.staff),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "all",
			path:     path(nil),
			wantData: marchallList(t, app.admin, app.ed, app.staff, inactive),
		},
		{
			name:     "search",
			path:     path(url.Values{"search": {"DIREC"}}),
			wantData: marchallList(t, app.ed),
		},
		{
			name:     "role prefix",
			path:     path(url.Values{"role": {user.RoleStaff}}),
			wantData: marchallList(t, app.staff, inactive),
		},
		{
			name:     "inactive",
			path:     path(url.Values{"is_active": {"false"}}),
			wantData: marchallList(t, inactive),
		},
		{
			name:     "ordering",
			path:     path(url.Values{"ordering": {"-username"}}),
			wantData: marchallList(t, inactive, app.staff, app.ed, app.admin),
		},
		{
			name:     "no match",
			path:     path(url.Values{"search": {"nobody"}}),
			wantData: marchallList(t),
		},
		{
			name:     "invalid created_from",
			path:     path(url.Values{"created_from": {"yesterday"}}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"created_from":"invalid date/time"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodGet
			if tt.token == "" {
				tt.token = adminToken
			}
			app.run(t, tt)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)

	tests := []httpTest{
		{
			name:     "not admin",
			body:     []byte(`{}`),
			token:    app.token(t, app.ed),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "invalid",
			body:     []byte(`{"username":"ab","email":"nope","password":"Xq9!vTz#2Lm"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "duplicate username",
			body:     []byte(`{"name":"Other","username":"Staff","password":"Xq9!vTz#2Lm","password_confirm":"Xq9!vTz#2Lm"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username":"a user with this username already exists"}`),
		},
		{
			name:     "role above own",
			body:     []byte(`{"name":"Boss","username":"boss","password":"Xq9!vTz#2Lm","password_confirm":"Xq9!vTz#2Lm","roles":["admin:owner"]}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"roles":"not enough rights to set these roles"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users"
			if tt.token == "" {
				tt.token = adminToken
			}
			app.run(t, tt)
		})
	}

	t.Run("valid", func(t *testing.T) {
		rec := app.run(t, httpTest{
			method:   http.MethodPost,
			path:     "/v1/users",
			token:    adminToken,
			body:     []byte(`{"name":" New Staff ","username":"NewStaff","email":"new@test.in","password":"Xq9!vTz#2Lm","password_confirm":"Xq9!vTz#2Lm","roles":["staff:"]}`),
			wantCode: http.StatusCreated,
		})

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "New Staff", usr.Name)
		assert.Equal(t, "newstaff", usr.Username)
		assert.Equal(t, []string{user.RoleStaff}, usr.Roles)

		saved, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NoError(t, saved.CheckPassword("Xq9!vTz#2Lm"))
	})
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)
	staffToken := app.token(t, app.staff)

	t.Run("retrieve", func(t *testing.T) {
		tests := []httpTest{
			{name: "self", path: "/v1/users/" + app.staff.ID, token: staffToken, wantData: marchallObj(t, app.staff)},
			{name: "other as staff", path: "/v1/users/" + app.ed.ID, token: staffToken, wantCode: http.StatusNotFound},
			{name: "other as admin", path: "/v1/users/" + app.ed.ID, token: adminToken, wantData: marchallObj(t, app.ed)},
			{name: "unknown", path: "/v1/users/unknown", token: adminToken, wantCode: http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.method = http.MethodGet
				app.run(t, tt)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		app.run(t, httpTest{
			method:   http.MethodPut,
			path:     "/v1/users/" + app.staff.ID,
			token:    staffToken,
			body:     []byte(`{"roles":["admin:"]}`),
			wantCode: http.StatusForbidden,
		})

		rec := app.run(t, httpTest{
			method: http.MethodPut,
			path:   "/v1/users/" + app.staff.ID,
			token:  staffToken,
			body:   []byte(`{"name":"Staff Member"}`),
		})
		var usr user.User
		unmarshal(t, rec, &usr)
		assert.Equal(t, "Staff Member", usr.Name)
		assert.Equal(t, "staff", usr.Username)

		rec = app.run(t, httpTest{
			method: http.MethodPut,
			path:   "/v1/users/" + app.staff.ID,
			token:  adminToken,
			body:   []byte(`{"roles":["ed:"],"is_active":false}`),
		})
		unmarshal(t, rec, &usr)
		assert.Equal(t, []string{user.RoleED}, usr.Roles)
		assert.False(t, *usr.IsActive)
	})

	t.Run("destroy", func(t *testing.T) {
		owner := testutil.CreateUser(t, app.usrRepo, "Owner", "owner", "owner@test.in", "", []string{user.RoleAdminOwner}, true)

		tests := []httpTest{
			{name: "not admin", path: "/v1/users/" + app.ed.ID, token: staffToken, wantCode: http.StatusNotFound},
			{name: "self", path: "/v1/users/" + app.admin.ID, token: adminToken, wantCode: http.StatusForbidden},
			{name: "higher role", path: "/v1/users/" + owner.ID, token: adminToken, wantCode: http.StatusForbidden},
			{name: "valid", path: "/v1/users/" + app.ed.ID, token: adminToken, wantCode: http.StatusNoContent},
			{name: "gone", path: "/v1/users/" + app.ed.ID, token: adminToken, wantCode: http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.method = http.MethodDelete
				app.run(t, tt)
			})
		}
	})
}

func Test_userApi_destroyMultiple(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)

	app.run(t, httpTest{
		method:   http.MethodDelete,
		path:     "/v1/users?id=" + app.staff.ID + "&id=" + app.admin.ID,
		token:    adminToken,
		wantCode: http.StatusForbidden,
	})
	app.run(t, httpTest{
		method:   http.MethodDelete,
		path:     "/v1/users?id=" + app.staff.ID + "&id=" + app.ed.ID,
		token:    adminToken,
		wantCode: http.StatusNoContent,
	})

	users, err := app.usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []user.User{app.admin}, users)
}

func Test_userApi_queryRoles(t *testing.T) {
	app := setup(t)
	app.run(t, httpTest{
		method:   http.MethodGet,
		path:     "/v1/users/roles",
		token:    app.token(t, app.admin),
		wantData: marchallObj(t, user.Roles),
	})
}
