package auth

import (
	"context"
	"strings"

	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// dummyPassword se hashea al construir el caso de uso; el login de un usuario
// inexistente compara contra ese hash para que el tiempo de respuesta no delate
// si el usuario existe.
const dummyPassword = "clinica-portal-dummy-password"

// Repositories repositorios de lectura que necesita el login.
type Repositories struct {
	Identities  repository.IdentityRepository
	Credentials repository.CredentialRepository
	Patients    repository.PatientRepository
	Staff       repository.StaffRepository
}

// AuthUseCase casos de uso de autenticación: login, logout e identidad actual.
type AuthUseCase struct {
	repos     Repositories
	hasher    ports.CredentialHasher
	sessions  ports.SessionProvider
	guard     *access.Guard
	log       *logger.Logger
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(repos Repositories, hasher ports.CredentialHasher, sessions ports.SessionProvider, guard *access.Guard, log *logger.Logger) (*AuthUseCase, error) {
	if log == nil {
		log = logger.Nop()
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	return &AuthUseCase{
		repos:     repos,
		hasher:    hasher,
		sessions:  sessions,
		guard:     guard,
		log:       log.Component("auth"),
		dummyHash: dummy,
	}, nil
}

// Login verifica usuario/contraseña, emite la sesión y calcula a dónde redirigir.
// El usuario es el email (si contiene "@") o el número nacional del paciente.
// Usuario inexistente y contraseña incorrecta responden igual: INVALID_CREDENTIALS.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	identity, err := uc.lookup(ctx, in.Username)
	if err != nil {
		return nil, uc.internal("login", err)
	}

	hash := uc.dummyHash
	var cred *entity.Credential
	if identity != nil {
		cred, err = uc.repos.Credentials.GetByIdentity(ctx, identity.ID, entity.ProviderPassword)
		if err != nil {
			return nil, uc.internal("login", err)
		}
		if cred != nil {
			hash = cred.PasswordHash
		}
	}
	ok, err := uc.hasher.Verify(hash, in.Password)
	if err != nil {
		return nil, uc.internal("login", err)
	}
	if !ok || cred == nil {
		uc.log.Audit("login_rejected").Msg("login rechazado")
		return nil, domain.ErrInvalidCredentials
	}

	active, err := uc.profileActive(ctx, identity)
	if err != nil {
		return nil, uc.internal("login", err)
	}
	if !active {
		uc.log.Audit("login_disabled").Str("identity_id", identity.ID).Msg("login de cuenta inactiva")
		return nil, domain.ErrAccountDisabled
	}

	sess := entity.Session{IdentityID: identity.ID, Role: identity.Role}
	token, err := uc.sessions.Issue(ctx, sess)
	if err != nil {
		return nil, uc.internal("login", err)
	}

	uc.log.Audit("login_succeeded").
		Str("identity_id", identity.ID).
		Str("role", identity.Role.String()).
		Bool("must_change_password", identity.MustChangePassword).
		Msg("login exitoso")

	return &dto.LoginResponse{
		Token:              token,
		Identity:           credential.ToIdentityResponse(identity),
		MustChangePassword: identity.MustChangePassword,
		RedirectTo:         uc.redirectAfterLogin(in.Redirect, &sess),
	}, nil
}

// Logout revoca la sesión. Un token vacío no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := uc.sessions.Revoke(ctx, token); err != nil {
		return uc.internal("logout", err)
	}
	return nil
}

// Me devuelve la identidad de la sesión actual.
func (uc *AuthUseCase) Me(ctx context.Context, identityID string) (*dto.IdentityResponse, error) {
	identity, err := uc.repos.Identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, uc.internal("me", err)
	}
	if identity == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	out := credential.ToIdentityResponse(identity)
	return &out, nil
}

func (uc *AuthUseCase) lookup(ctx context.Context, username string) (*entity.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	if strings.Contains(username, "@") {
		return uc.repos.Identities.GetByEmail(ctx, entity.NormalizeEmail(username))
	}
	patient, err := uc.repos.Patients.GetByNationalID(ctx, username)
	if err != nil || patient == nil || !patient.HasAccount() {
		return nil, err
	}
	return uc.repos.Identities.GetByID(ctx, *patient.IdentityID)
}

// profileActive una identidad sin perfil vinculado no puede iniciar sesión.
func (uc *AuthUseCase) profileActive(ctx context.Context, identity *entity.Identity) (bool, error) {
	switch identity.Role.Audience() {
	case entity.AudiencePatient:
		p, err := uc.repos.Patients.GetByIdentityID(ctx, identity.ID)
		if err != nil {
			return false, err
		}
		return p != nil && p.IsActive(), nil
	case entity.AudienceStaff:
		s, err := uc.repos.Staff.GetByIdentityID(ctx, identity.ID)
		if err != nil {
			return false, err
		}
		return s != nil && s.IsActive(), nil
	default:
		return false, nil
	}
}

// redirectAfterLogin acepta el destino pedido solo si es seguro y el guard lo permite
// para la sesión recién emitida; si no, la home del rol.
func (uc *AuthUseCase) redirectAfterLogin(requested string, sess *entity.Session) string {
	landing := uc.guard.LandingFor(sess.Role)
	target := access.SafeRedirect(requested, landing)
	p := target
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if uc.guard.IsLoginPath(p) || !uc.guard.Decide(p, sess).Allowed() {
		return landing
	}
	return target
}

func (uc *AuthUseCase) internal(op string, err error) error {
	uc.log.Error().Err(err).Str("op", op).Msg("fallo en autenticación")
	return domain.Internal(op, err)
}
