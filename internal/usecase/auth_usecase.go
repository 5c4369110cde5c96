package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 12

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
	log      *zap.Logger
}

// DI
func NewAuthUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
	log *zap.Logger,
) *AuthUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{
		tx:       tx,
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
		log:      log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UserOutput struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	CustomerID int64  `json:"customer_id"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// 会員登録。Userと顧客プロフィールを同じTxで作る
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return UserOutput{}, errMissingField("name")
	}
	if email == "" {
		return UserOutput{}, errMissingField("email")
	}
	if !isValidEmailFormat(email) {
		return UserOutput{}, errValidation("invalid email format")
	}
	// password の長さチェック（最小12文字）
	if len(in.Password) < minPasswordLen {
		return UserOutput{}, errValidation("password too short")
	}
	if isWeakPassword(in.Password) {
		return UserOutput{}, errValidation("weak password")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.log.Error("hash password", zap.Error(err))
		return UserOutput{}, errServer()
	}

	var out UserOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// email重複チェック
		_, err := r.Users().FindByEmail(ctx, email)
		if err == nil {
			return NewHTTPError(http.StatusConflict, CodeConflict, "email already registered")
		}
		if !errors.Is(err, repo.ErrUserNotFound) {
			return err
		}

		user := &model.User{
			Email:        email,
			PasswordHash: hashed,
			IsActive:     true,
		}
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}

		customer, err := r.Customers().Create(ctx, model.Customer{
			UserID: &user.ID,
			Name:   name,
			Email:  email,
		})
		if err != nil {
			return err
		}

		out = UserOutput{ID: user.ID, Email: user.Email, Name: customer.Name, CustomerID: customer.ID}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return UserOutput{}, err
		}
		u.log.Error("register user", zap.String("email", email), zap.Error(err))
		return UserOutput{}, errServer()
	}

	u.log.Info("user registered", zap.Int64("user_id", out.ID))
	return out, nil
}

// ログインしてアクセストークンを返す
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return LoginOutput{}, errMissingField("email")
	}
	if in.Password == "" {
		return LoginOutput{}, errMissingField("password")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return LoginOutput{}, errUnauthorized("invalid credentials")
	}
	if err != nil {
		u.log.Error("find user", zap.Error(err))
		return LoginOutput{}, errServer()
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, errUnauthorized("user is inactive")
	}
	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, errUnauthorized("invalid credentials")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, now)
	if err != nil {
		u.log.Error("issue access token", zap.Int64("user_id", user.ID), zap.Error(err))
		return LoginOutput{}, errServer()
	}

	// 失敗してもログインは通す
	if err := u.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		u.log.Warn("touch last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
	}, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password1234": {},
		"123456789012": {},
		"qwertyuiop12": {},
		"letmein12345": {},
		"adminadmin12": {},
	}

	_, ok := weak[normalized]
	return ok
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
