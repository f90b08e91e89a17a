package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	BearerPrefix = "Bearer "
	TokenIssuer  = "snapgram"
)

var (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour

	errMissingSecret = errors.New("jwt secret key is not configured")
)

// HashToken is how tokens are stored in redis. The raw token never is.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func unauthorized(message string) error {
	return &model.ValidationError{
		Code:    constant.ERR_UNATHORIZED_ERROR,
		Message: message,
		Param:   "accessToken",
	}
}

// GenerateTokenPair signs an HS256 access token for userId and pairs it with
// an opaque refresh token.
func GenerateTokenPair(userId uuid.UUID, jwtSecretKey string) (model.TokenResponse, error) {
	if jwtSecretKey == "" {
		return model.TokenResponse{}, errMissingSecret
	}

	now := time.Now().UTC()
	claims := model.Claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			Subject:   userId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecretKey))
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken:           accessToken,
		AccessTokenExpiresIn:  int(AccessTokenDuration.Seconds()),
		RefreshToken:          uuid.NewString(),
		RefreshTokenExpiresIn: int(RefreshTokenDuration.Seconds()),
		TokenType:             strings.TrimSpace(BearerPrefix),
	}, nil
}

var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(TokenIssuer),
	jwt.WithExpirationRequired(),
)

// ValidateAccessToken checks an Authorization header value and returns the
// bare token with the user it was issued to.
func ValidateAccessToken(authorization string, log *zap.Logger, jwtSecretKey string) (string, uuid.UUID, error) {
	if jwtSecretKey == "" {
		return "", uuid.Nil, errMissingSecret
	}

	tokenString, found := strings.CutPrefix(authorization, BearerPrefix)
	switch {
	case authorization == "":
		return "", uuid.Nil, unauthorized("No authentication token is provided")
	case !found:
		return "", uuid.Nil, unauthorized("Authentication token format is not match")
	case strings.TrimSpace(tokenString) == "":
		return "", uuid.Nil, unauthorized("Authentication token is empty")
	}

	claims := &model.Claims{}
	_, err := tokenParser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecretKey), nil
	})
	if err != nil {
		log.Debug("rejected access token", zap.Error(err))
		return "", uuid.Nil, unauthorized(parseErrorMessage(err))
	}

	if claims.UserId == uuid.Nil {
		return "", uuid.Nil, unauthorized("Authentication token is invalid")
	}

	return tokenString, claims.UserId, nil
}

func parseErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "Authentication token is malformed"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Authentication token is expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Authentication token is not valid yet"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "Authentication token signature is invalid"
	default:
		return "Authentication token is invalid"
	}
}
