package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/estoque-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewUserStore(), auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "estoque-api-test",
	}).WithBcryptCost(bcrypt.MinCost)
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: "  Ana@Loja.COM ", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@loja.com", user.Email)
	assert.Equal(t, "cliente", user.Role)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ANA@loja.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	userID, role, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "cliente", role)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@loja.com", Password: "segredo123"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ANA@loja.com", Password: "outrasenha"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_Validacion(t *testing.T) {
	uc := newAuth()

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "sem-arroba", Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "ana@loja.com", Password: "curta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_Credenciales(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@loja.com", Password: "segredo123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@loja.com", Password: "errada123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@loja.com", Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegisterAdmin_TokenLlevaRolAdmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	admin, err := uc.RegisterAdmin(ctx, dto.RegisterRequest{Email: "gerente@loja.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "gerente@loja.com", Password: "segredo123"})
	require.NoError(t, err)
	_, role, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}
