package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUserRequest(role model.Role) *model.CreateUserRequest {
	return &model.CreateUserRequest{
		Email:     "New.Staff@School.test",
		Password:  "long-enough",
		FirstName: " New ",
		LastName:  "Staff",
		Role:      role,
	}
}

func TestUserCreate_RectorAssignsStaffOfOwnInstitution(t *testing.T) {
	inst := newInstitution(true)
	rector := newUser(t, model.RoleRector, &inst.ID, "pw-rector-1")
	users := newFakeUsers(rector)
	jobs := &fakeJobs{}
	svc := NewUserService(testServer(t), users, fakeInstitutions{inst.ID: inst}, jobs)

	created, err := svc.Create(context.Background(), rector.Principal(), &inst.ID, createUserRequest(model.RoleAccountant))
	require.NoError(t, err)

	assert.Equal(t, "new.staff@school.test", created.Email)
	assert.Equal(t, "New", created.FirstName)
	require.NotNil(t, created.InstitutionID)
	assert.Equal(t, inst.ID, *created.InstitutionID)
	assert.NoError(t, created.CheckPassword("long-enough"))

	require.Len(t, jobs.welcome, 1)
	assert.Equal(t, "new.staff@school.test", jobs.welcome[0].To)
	assert.Equal(t, "Colegio Test", jobs.welcome[0].InstitutionName)
}

func TestUserCreate_RoleRestrictions(t *testing.T) {
	inst := newInstitution(true)
	other := uuid.New()
	rector := newUser(t, model.RoleRector, &inst.ID, "pw-rector-1")
	accountant := newUser(t, model.RoleAccountant, &inst.ID, "pw-account-1")
	svc := NewUserService(testServer(t), newFakeUsers(rector, accountant), fakeInstitutions{inst.ID: inst}, &fakeJobs{})

	tests := []struct {
		name   string
		caller *model.User
		req    *model.CreateUserRequest
	}{
		{name: "rector cannot create super admin", caller: rector, req: createUserRequest(model.RoleSuperAdmin)},
		{name: "rector cannot create rector", caller: rector, req: createUserRequest(model.RoleRector)},
		{name: "accountant cannot create users", caller: accountant, req: createUserRequest(model.RoleAuxiliaryAccountant)},
		{
			name:   "rector cannot target another institution",
			caller: rector,
			req: func() *model.CreateUserRequest {
				r := createUserRequest(model.RoleAccountant)
				r.InstitutionID = other.String()
				return r
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.caller.Principal(), &inst.ID, tt.req)
			requireHTTPError(t, err, http.StatusForbidden)
		})
	}
}

func TestUserCreate_SuperAdmin(t *testing.T) {
	root := newUser(t, model.RoleSuperAdmin, nil, "pw-root-123")
	svc := NewUserService(testServer(t), newFakeUsers(root), fakeInstitutions{}, &fakeJobs{})

	admin, err := svc.Create(context.Background(), root.Principal(), nil, createUserRequest(model.RoleSuperAdmin))
	require.NoError(t, err)
	assert.Nil(t, admin.InstitutionID)

	_, err = svc.Create(context.Background(), root.Principal(), nil, createUserRequest(model.RoleRector))
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestUserUpdateAndDeactivate(t *testing.T) {
	inst := newInstitution(true)
	rector := newUser(t, model.RoleRector, &inst.ID, "pw-rector-1")
	aux := newUser(t, model.RoleAuxiliaryAccountant, &inst.ID, "pw-aux-1234")
	outsider := newUser(t, model.RoleAccountant, ptr(uuid.New()), "pw-out-1234")
	users := newFakeUsers(rector, aux, outsider)
	svc := NewUserService(testServer(t), users, fakeInstitutions{inst.ID: inst}, nil)
	ctx := context.Background()
	p := rector.Principal()

	promote := model.RoleAccountant
	updated, err := svc.Update(ctx, p, &model.UpdateUserRequest{IDParam: model.IDParam{ID: aux.ID.String()}, Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAccountant, updated.Role)

	toRector := model.RoleRector
	_, err = svc.Update(ctx, p, &model.UpdateUserRequest{IDParam: model.IDParam{ID: aux.ID.String()}, Role: &toRector})
	requireHTTPError(t, err, http.StatusForbidden)

	_, err = svc.Update(ctx, p, &model.UpdateUserRequest{IDParam: model.IDParam{ID: rector.ID.String()}, IsActive: ptr(false)})
	requireHTTPError(t, err, http.StatusForbidden)

	_, err = svc.Get(ctx, p, outsider.ID)
	requireHTTPError(t, err, http.StatusNotFound)

	requireHTTPError(t, svc.Deactivate(ctx, p, rector.ID), http.StatusUnprocessableEntity)
	require.NoError(t, svc.Deactivate(ctx, p, aux.ID))
	assert.False(t, users.byID[aux.ID].IsActive)
}

func ptr[T any](v T) *T {
	return &v
}
