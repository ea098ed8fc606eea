package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/domain"
	"github.com/mspark/gemapi/domain/account"
	mAccount "github.com/mspark/gemapi/domain/account/mocks"
)

func TestSignAndParseToken(t *testing.T) {
	mockAccountRepo := &mAccount.Repo{}

	mockAccountRepo.On("FindOne", mock.Anything, domain.UserId("user-1")).Return(&account.Account{
		Id:   "user-1",
		Role: domain.RoleBidder,
	}, nil)

	ctx := ctx.Background()
	u := New("jwt-secret", mockAccountRepo)
	tkn, err := u.SignToken(ctx, "user-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)
	userId, role, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userId)
	assert.Equal(t, string(domain.RoleBidder), role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	mockAccountRepo := &mAccount.Repo{}

	u := New("jwt-secret", mockAccountRepo)
	_, _, err := u.ParseToken(ctx.Background(), "not-a-token")
	assert.Error(t, err)
}
