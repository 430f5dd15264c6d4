package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
	inmemdb "github.com/trezcool/dashboard/storage/database/inmem"
	"github.com/trezcool/dashboard/testutil"
)

type fixture struct {
	repo user.Repository
	svc  *user.Service
}

func setup() fixture {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return fixture{repo: repo, svc: user.NewService(repo)}
}

func TestNewUser_Validate(t *testing.T) {
	f := setup()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(nil)

	testutil.CreateUser(t, f.repo, "Jane", "jane", "jane@test.in", "", nil, true)

	valid := func() user.NewUser {
		return user.NewUser{
			Name:            " Joe ",
			Username:        "JOE_1",
			Email:           "Joe@Test.in ",
			Password:        "Sup3r$ecretX",
			PasswordConfirm: "Sup3r$ecretX",
			Roles:           []string{user.RoleStaff},
		}
	}

	tests := []struct {
		name       string
		mutate     func(nu *user.NewUser)
		wantFields []string
	}{
		{name: "valid", mutate: func(nu *user.NewUser) {}},
		{name: "name required", mutate: func(nu *user.NewUser) { nu.Name = "  " }, wantFields: []string{"name"}},
		{
			name:       "username or email",
			mutate:     func(nu *user.NewUser) { nu.Username, nu.Email = "", "" },
			wantFields: []string{"username", "email"},
		},
		{name: "bad email", mutate: func(nu *user.NewUser) { nu.Email = "joe" }, wantFields: []string{"email"}},
		{name: "unknown role", mutate: func(nu *user.NewUser) { nu.Roles = []string{"boss:"} }, wantFields: []string{"roles"}},
		{name: "weak password", mutate: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "abc", "abc" }, wantFields: []string{"password"}},
		{name: "confirmation mismatch", mutate: func(nu *user.NewUser) { nu.PasswordConfirm = "nope" }, wantFields: []string{"password_confirm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)
			err := nu.Validate(context.Background(), validate, f.svc)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, "Joe", nu.Name)
				assert.Equal(t, "joe_1", nu.Username)
				assert.Equal(t, "joe@test.in", nu.Email)
				return
			}
			fields := core.TranslateErrors(err.(validator.ValidationErrors), translator)
			for _, fld := range tt.wantFields {
				assert.Contains(t, fields, fld)
			}
		})
	}

	t.Run("unique username", func(t *testing.T) {
		nu := valid()
		nu.Username = "JANE"
		err := nu.Validate(context.Background(), validate, f.svc)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []core.FieldError{{Field: "username", Error: user.ErrUsernameExists.Error()}}, vErr.Fields)
	})
}

func TestService(t *testing.T) {
	f := setup()
	ctx := context.Background()

	usr, err := f.svc.Create(ctx, user.NewUser{Name: "Joe", Username: "joe", Email: "joe@test.in", Password: "Sup3r$ecretX"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	require.NotNil(t, usr.IsActive)
	assert.True(t, *usr.IsActive)
	assert.Equal(t, []string{}, usr.Roles)
	assert.NoError(t, usr.CheckPassword("Sup3r$ecretX"))

	t.Run("get by username or email", func(t *testing.T) {
		got, err := f.svc.GetByUsernameOrEmail(ctx, "  JOE@test.in ")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)

		_, err = f.svc.GetByUsernameOrEmail(ctx, "")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("uniqueness", func(t *testing.T) {
		err := f.svc.CheckUniqueness(ctx, "other", "joe@test.in")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "email", vErr.Fields[0].Field)

		assert.NoError(t, f.svc.CheckUniqueness(ctx, "joe", "joe@test.in", usr))
	})

	t.Run("update", func(t *testing.T) {
		inactive := false
		got, err := f.svc.Update(ctx, usr, user.UpdateUser{
			Name:     "Joseph",
			Username: usr.Username,
			Email:    usr.Email,
			IsActive: &inactive,
			Roles:    []string{user.RoleED},
		})
		require.NoError(t, err)
		assert.Equal(t, "Joseph", got.Name)
		assert.False(t, *got.IsActive)
		assert.Equal(t, []string{user.RoleED}, got.Roles)
		assert.Equal(t, usr.CreatedAt, got.CreatedAt)
		assert.NoError(t, got.CheckPassword("Sup3r$ecretX"), "password is kept")
	})

	t.Run("set password", func(t *testing.T) {
		got, err := f.svc.SetPassword(ctx, usr, "An0ther$ecret")
		require.NoError(t, err)
		assert.NoError(t, got.CheckPassword("An0ther$ecret"))
	})

	t.Run("set last login", func(t *testing.T) {
		got, err := f.svc.SetLastLogin(ctx, usr)
		require.NoError(t, err)
		assert.False(t, got.LastLogin.IsZero())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(ctx, usr.ID))
		_, err := f.svc.GetByID(ctx, usr.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestService_Query(t *testing.T) {
	f := setup()
	ctx := context.Background()

	ann := testutil.CreateUser(t, f.repo, "Ann", "ann", "ann@test.in", "", []string{user.RoleAdmin}, true)
	bob := testutil.CreateUser(t, f.repo, "Bob", "bob", "bob@test.in", "", []string{user.RoleStaff}, true)
	eve := testutil.CreateUser(t, f.repo, "Eve", "eve", "eve@test.in", "", []string{user.RoleED}, false)
	inactive := false

	tests := []struct {
		name     string
		filter   *user.QueryFilter
		ordering []core.DBOrdering
		want     []user.User
	}{
		{name: "all", want: []user.User{ann, bob, eve}},
		{name: "search", filter: &user.QueryFilter{Search: "BO"}, want: []user.User{bob}},
		{name: "role prefix", filter: &user.QueryFilter{Roles: []string{"admin:", "ed:"}}, want: []user.User{ann, eve}},
		{name: "inactive", filter: &user.QueryFilter{IsActive: &inactive}, want: []user.User{eve}},
		{name: "ordering", ordering: []core.DBOrdering{{Field: "name", Ascending: false}}, want: []user.User{eve, bob, ann}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
