package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User is the signed-in clinician.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// ClientMeta describes the client performing an auth operation.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Issued is the result of a successful sign-in.
type Issued struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator is the identity provider seen by a session Context.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string, meta ClientMeta) (*Issued, error)
	Resolve(ctx context.Context, token string) (*User, error)
	SignOut(ctx context.Context, token string) error
}

// Provider authenticates clinicians against the users table and persists
// sessions in the database, with redis as a read-through cache when set.
type Provider struct {
	db       *gorm.DB
	rdb      *redis.Client
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	validate *validator.Validate
}

// NewProvider creates a provider. rdb may be nil. An empty secret is replaced
// by a random one, which invalidates tokens on restart.
func NewProvider(db *gorm.DB, rdb *redis.Client, secret string, ttl time.Duration) *Provider {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		log.Warn().Msg("JWTSECRET not set, sessions will not survive a restart")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Provider{
		db:       db,
		rdb:      rdb,
		secret:   key,
		ttl:      ttl,
		now:      time.Now,
		validate: validator.New(),
	}
}

func sessionKey(token string) string {
	return "session:" + token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) checkEmail(email string) error {
	if err := p.validate.Var(email, "required,email"); err != nil {
		return authErr(CodeInvalidEmail, err)
	}
	return nil
}

// SignIn verifies credentials and opens a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string, meta ClientMeta) (*Issued, error) {
	email = normalizeEmail(email)
	issued, err := p.signIn(ctx, email, password, meta)
	if err != nil {
		util.LogLoginFailure(email, meta.IP, meta.UserAgent, CodeOf(err))
		return nil, err
	}
	util.LogLoginSuccess(issued.User.UID, email, meta.IP, meta.UserAgent)
	return issued, nil
}

func (p *Provider) signIn(ctx context.Context, email, password string, meta ClientMeta) (*Issued, error) {
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}

	db := p.db.WithContext(ctx)
	var u model.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authErr(CodeUserNotFound, err)
		}
		return nil, authErr(CodeNetworkFailed, err)
	}

	now := p.now()
	if u.LockedUntil != nil && *u.LockedUntil > now.Unix() {
		return nil, authErr(CodeTooManyRequests, fmt.Errorf("account locked until %s", time.Unix(*u.LockedUntil, 0).UTC().Format(time.RFC3339)))
	}

	if !util.VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		locked, err := p.recordFailure(db, &u, now, meta)
		if err != nil {
			return nil, authErr(CodeNetworkFailed, err)
		}
		if locked {
			return nil, authErr(CodeTooManyRequests, errors.New("account locked"))
		}
		return nil, authErr(CodeWrongPassword, errors.New("password mismatch"))
	}

	if u.FailedAttempts != 0 || u.LockedUntil != nil {
		err := db.Model(&model.User{}).Where("uid = ?", u.UID).
			Updates(map[string]interface{}{"failed_attempts": 0, "locked_until": nil}).Error
		if err != nil {
			return nil, authErr(CodeNetworkFailed, err)
		}
	}

	return p.issue(ctx, User{UID: u.UID, Email: u.Email}, now, meta)
}

// recordFailure counts a wrong password and reports whether it locked the
// account. An expired lock is cleared on the way.
func (p *Provider) recordFailure(db *gorm.DB, u *model.User, now time.Time, meta ClientMeta) (bool, error) {
	u.FailedAttempts++
	updates := map[string]interface{}{"failed_attempts": u.FailedAttempts}
	if u.LockedUntil != nil {
		u.LockedUntil = nil
		updates["locked_until"] = nil
	}
	locked := u.FailedAttempts >= maxFailedAttempts
	if locked {
		until := now.Unix() + lockoutDurationSeconds
		u.LockedUntil = &until
		updates["locked_until"] = until
		updates["failed_attempts"] = 0
		util.LogAccountLocked(u.UID, u.Email, meta.IP, u.FailedAttempts)
	}
	return locked, db.Model(&model.User{}).Where("uid = ?", u.UID).Updates(updates).Error
}

func (p *Provider) issue(ctx context.Context, user User, now time.Time, meta ClientMeta) (*Issued, error) {
	expires := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.UID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, authErr(CodeInternal, err)
	}

	s := model.Session{
		ID:        claims.ID,
		UID:       user.UID,
		Token:     token,
		ExpiresAt: expires,
		ClientIP:  meta.IP,
		Browser:   meta.UserAgent,
	}
	if err := p.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, authErr(CodeNetworkFailed, err)
	}
	p.cache(ctx, token, user, expires.Sub(now))
	return &Issued{User: user, Token: token, ExpiresAt: expires}, nil
}

func (p *Provider) cache(ctx context.Context, token string, user User, ttl time.Duration) {
	if p.rdb == nil || ttl <= 0 {
		return
	}
	if err := p.rdb.Set(ctx, sessionKey(token), user.UID+"|"+user.Email, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("session cache write failed")
	}
}

func (p *Provider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Resolve restores the user behind a persisted session token.
func (p *Provider) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, authErr(CodeInvalidSession, errors.New("empty token"))
	}
	claims, err := p.parse(token)
	if err != nil {
		return nil, authErr(CodeInvalidSession, err)
	}

	if p.rdb != nil {
		v, err := p.rdb.Get(ctx, sessionKey(token)).Result()
		if err == nil {
			if uid, email, ok := strings.Cut(v, "|"); ok && uid == claims.Subject {
				return &User{UID: uid, Email: email}, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("session cache read failed")
		}
	}

	var row struct {
		UID       string
		Email     string
		ExpiresAt time.Time
	}
	err = p.db.WithContext(ctx).
		Table("sessions").
		Select("sessions.uid, users.email, sessions.expires_at").
		Joins("JOIN users ON users.uid = sessions.uid").
		Where("sessions.token = ?", token).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authErr(CodeInvalidSession, errors.New("session revoked"))
		}
		return nil, authErr(CodeNetworkFailed, err)
	}
	now := p.now()
	if !row.ExpiresAt.After(now) {
		return nil, authErr(CodeInvalidSession, errors.New("session expired"))
	}

	user := User{UID: row.UID, Email: row.Email}
	p.cache(ctx, token, user, row.ExpiresAt.Sub(now))
	return &user, nil
}

// SignOut revokes a session. Revoking an unknown token is not an error.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if p.rdb != nil {
		if err := p.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Warn().Err(err).Msg("session cache delete failed")
		}
	}
	if err := p.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error; err != nil {
		return authErr(CodeNetworkFailed, err)
	}
	return nil
}

// SignUp creates a clinician account.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, authErr(CodeWeakPassword, fmt.Errorf("password shorter than %d characters", minPasswordLen))
	}

	db := p.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, authErr(CodeNetworkFailed, err)
	}
	if count > 0 {
		return nil, authErr(CodeEmailInUse, errors.New("duplicate email"))
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		return nil, authErr(CodeInternal, err)
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return nil, authErr(CodeInternal, err)
	}
	u := model.User{
		UID:          uuid.NewString(),
		Email:        email,
		Name:         util.NormalizeName(name),
		PasswordHash: hashed,
		PasswordSalt: salt,
	}
	if err := db.Create(&u).Error; err != nil {
		return nil, authErr(CodeNetworkFailed, err)
	}
	return &u, nil
}

// PurgeExpired deletes sessions past their expiry and returns how many went.
func (p *Provider) PurgeExpired(ctx context.Context) (int64, error) {
	res := p.db.WithContext(ctx).Where("expires_at <= ?", p.now()).Delete(&model.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
