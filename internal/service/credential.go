package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"plan-it/backend/pkg/jwt"
)

// TokenPair Access/Refresh Token 对
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // Access Token 有效期（秒）
}

// CredentialService 密码哈希与令牌签发/校验
type CredentialService struct {
	cost   int
	jwtMgr *jwt.Manager

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialService 创建 CredentialService；cost 越界时使用 bcrypt 默认值
func NewCredentialService(cost int, jwtMgr *jwt.Manager) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{cost: cost, jwtMgr: jwtMgr}
}

// Hash 生成带盐的 bcrypt 哈希
func (c *CredentialService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify 校验明文密码与哈希是否匹配
func (c *CredentialService) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyNoUser 对固定哈希做一次同成本的比较，结果恒为 false
func (c *CredentialService) VerifyNoUser(password string) bool {
	c.dummyOnce.Do(func() {
		// 失败时 dummyHash 为空，CompareHashAndPassword 立即返回错误
		c.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("plan-it/no-such-user"), c.cost)
	})
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
	return false
}

// IssueTokens 为用户签发 Token 对
func (c *CredentialService) IssueTokens(userID string, rememberMe bool) (*TokenPair, error) {
	access, err := c.jwtMgr.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := c.jwtMgr.GenerateRefreshToken(userID, rememberMe)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(c.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}

// ValidateAccessToken 校验 Access Token
func (c *CredentialService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return c.validate(token, jwt.TokenTypeAccess)
}

// ValidateRefreshToken 校验 Refresh Token
func (c *CredentialService) ValidateRefreshToken(token string) (*jwt.Claims, error) {
	return c.validate(token, jwt.TokenTypeRefresh)
}

func (c *CredentialService) validate(token, tokenType string) (*jwt.Claims, error) {
	claims, err := c.jwtMgr.ParseTokenOfType(token, tokenType)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ── 随机值生成 ──

// randomToken 生成 nBytes 字节熵的十六进制令牌
func randomToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateTempPassword 生成随机临时密码（至少包含一个字母和一个数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 12
	}

	pick := func(charset string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return 0, err
		}
		return charset[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
