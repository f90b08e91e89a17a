package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/observability"
	"github.com/ferdian3456/snapgram/internal/querycache"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/google/uuid"

	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	UserRepository UserStore
	SaveRepository SaveStore
	FileRepository FileStore
	Mailer         Mailer
	Cache          *querycache.Cache
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewUserUsecase(userRepository UserStore, saveRepository SaveStore, fileRepository FileStore, mailer Mailer, cache *querycache.Cache, zap *zap.Logger, koanf *koanf.Koanf) *UserUsecase {
	return &UserUsecase{
		UserRepository: userRepository,
		SaveRepository: saveRepository,
		FileRepository: fileRepository,
		Mailer:         mailer,
		Cache:          cache,
		Log:            zap,
		Config:         koanf,
	}
}

func (usecase *UserUsecase) SignUp(ctx context.Context, payload model.UserSignUpRequest) (model.TokenResponse, error) {
	token := model.TokenResponse{}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Username = strings.ToLower(strings.TrimSpace(payload.Username))
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	err := util.ValidateStruct(payload)
	if err != nil {
		return token, err
	}

	existUsername, existEmail, err := usecase.UserRepository.CheckUsernameOrEmailUnique(ctx, payload.Username, payload.Email)
	if err != nil {
		return token, err
	}

	if existUsername == payload.Username {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is already taken",
			Param:   "username",
		}
	} else if existEmail == payload.Email {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already registered",
			Param:   "email",
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return token, err
	}

	now := time.Now().UTC()
	user := model.User{
		Id:             uuid.New(),
		Name:           payload.Name,
		Username:       payload.Username,
		Email:          payload.Email,
		Password:       string(hashedPassword),
		ImageUrl:       util.InitialsAvatarUrl(usecase.Config.String("PUBLIC_URL"), payload.Name),
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	err = usecase.UserRepository.CreateUser(ctx, user)
	if err != nil {
		return token, err
	}

	token, err = usecase.issueToken(ctx, user.Id)
	if err != nil {
		return token, err
	}

	usecase.invalidate(ctx, querycache.TagUsers)
	usecase.sendWelcomeEmail(ctx, user)

	return token, nil
}

func (usecase *UserUsecase) SignIn(ctx context.Context, payload model.UserSignInRequest) (model.TokenResponse, error) {
	token := model.TokenResponse{}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	err := util.ValidateStruct(payload)
	if err != nil {
		return token, err
	}

	userId, password, err := usecase.UserRepository.GetUserAuth(ctx, payload.Email)
	if err != nil {
		return token, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(password), []byte(payload.Password))
	if err != nil {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email or password is incorrect",
			Param:   "email",
		}
	}

	return usecase.issueToken(ctx, userId)
}

func (usecase *UserUsecase) issueToken(ctx context.Context, userId uuid.UUID) (model.TokenResponse, error) {
	token, err := util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctx, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

// sendWelcomeEmail is best effort. Sign-up never fails because of mail.
func (usecase *UserUsecase) sendWelcomeEmail(ctx context.Context, user model.User) {
	if usecase.Mailer == nil {
		return
	}

	log := observability.WithContext(ctx, usecase.Log)

	body, err := util.RenderWelcomeEmail(model.WelcomeTemplateData{Name: user.Name, Username: user.Username})
	if err != nil {
		log.Warn("failed to render welcome email", zap.Error(err))
		return
	}

	err = usecase.Mailer.Send(user.Email, "Welcome to Snapgram", body)
	if err != nil {
		log.Warn("failed to send welcome email", zap.String("userId", user.Id.String()), zap.Error(err))
	}
}

func (usecase *UserUsecase) GetAccessToken(ctx context.Context, userId uuid.UUID, accessToken string) error {
	hashedTokenFromCache, err := usecase.UserRepository.GetAccessTokenInCache(ctx, userId)
	if err != nil {
		return err
	}

	// Hash the token from client before comparing with cached hash
	hashedTokenFromClient := util.HashToken(accessToken)

	if hashedTokenFromClient != hashedTokenFromCache {
		return &model.ValidationError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authorization token is expired",
			Param:   "accessToken",
		}
	}

	return nil
}

func (usecase *UserUsecase) SignOut(ctx context.Context, userId uuid.UUID) error {
	err := usecase.UserRepository.RemoveAuthToken(ctx, userId)
	if err != nil {
		return err
	}

	usecase.invalidate(ctx, querycache.TagCurrentUser(userId))

	return nil
}

func (usecase *UserUsecase) GetCurrentUser(ctx context.Context, userId uuid.UUID) (model.CurrentUserResponse, error) {
	key := querycache.Key("current-user", userId.String())
	tags := []string{querycache.TagCurrentUser(userId), querycache.TagCurrentUsers}

	return querycache.Fetch(ctx, usecase.Cache, key, tags, func(ctx context.Context) (model.CurrentUserResponse, error) {
		user, err := usecase.UserRepository.GetUser(ctx, userId)
		if err != nil {
			return model.CurrentUserResponse{}, err
		}

		saves, err := usecase.SaveRepository.ListUserSaves(ctx, userId)
		if err != nil {
			return model.CurrentUserResponse{}, err
		}

		return model.CurrentUserResponse{UserResponse: user.ToResponse(), Saves: saves}, nil
	})
}

func (usecase *UserUsecase) GetUsers(ctx context.Context, limit int) ([]model.UserResponse, error) {
	if limit == 0 {
		limit = constant.DEFAULT_USER_LIMIT
	}

	if limit < 0 || limit > constant.MAX_LIMIT {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Limit must be between 1 and " + strconv.Itoa(constant.MAX_LIMIT),
			Param:   "limit",
		}
	}

	key := querycache.Key("users", strconv.Itoa(limit))
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagUsers}, func(ctx context.Context) ([]model.UserResponse, error) {
		return usecase.UserRepository.ListUsers(ctx, limit)
	})
}

func (usecase *UserUsecase) GetUserById(ctx context.Context, userIdParam string) (model.UserResponse, error) {
	userId, err := uuid.Parse(userIdParam)
	if err != nil {
		return model.UserResponse{}, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "User not found",
			Param:   "userId",
		}
	}

	key := querycache.Key("user", userId.String())
	return querycache.Fetch(ctx, usecase.Cache, key, []string{querycache.TagUsers}, func(ctx context.Context) (model.UserResponse, error) {
		user, err := usecase.UserRepository.GetUser(ctx, userId)
		if err != nil {
			return model.UserResponse{}, err
		}

		return user.ToResponse(), nil
	})
}

// UpdateUser edits the caller's own profile. An uploaded avatar replaces the
// previous one with the same guarantees as a post image swap.
func (usecase *UserUsecase) UpdateUser(ctx context.Context, userId uuid.UUID, userIdParam string, payload model.UserUpdateRequest, avatar *model.ImageUpload) (model.UserResponse, error) {
	if userIdParam != userId.String() {
		return model.UserResponse{}, &model.ValidationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You can only edit your own profile",
			Param:   "userId",
		}
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Username = strings.ToLower(strings.TrimSpace(payload.Username))

	err := util.ValidateStruct(payload)
	if err != nil {
		return model.UserResponse{}, err
	}

	existing, err := usecase.UserRepository.GetUser(ctx, userId)
	if err != nil {
		return model.UserResponse{}, err
	}

	if payload.Username != existing.Username {
		exists, err := usecase.UserRepository.CheckUsernameUnique(ctx, payload.Username, userId)
		if err != nil {
			return model.UserResponse{}, err
		}

		if exists == 1 {
			return model.UserResponse{}, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username is already taken",
				Param:   "username",
			}
		}
	}

	updated := existing
	updated.Name = payload.Name
	updated.Username = payload.Username
	updated.Bio = payload.Bio
	updated.UpdateDatetime = time.Now().UTC()

	if avatar == nil && existing.ImageId == nil {
		updated.ImageUrl = util.InitialsAvatarUrl(usecase.Config.String("PUBLIC_URL"), payload.Name)
	}

	if avatar != nil {
		fileId, imageUrl, err := uploadImage(ctx, usecase.FileRepository, usecase.Log, *avatar)
		if err != nil {
			return model.UserResponse{}, err
		}

		if existing.ImageId != nil {
			err = usecase.FileRepository.MarkPending(ctx, *existing.ImageId, time.Now())
			if err != nil {
				discardFile(ctx, usecase.FileRepository, usecase.Log, fileId)
				return model.UserResponse{}, err
			}
		}

		updated.ImageId = &fileId
		updated.ImageUrl = imageUrl
	}

	err = usecase.UserRepository.UpdateUser(ctx, updated, existing.ImageId)
	if err != nil {
		if avatar != nil {
			discardFile(ctx, usecase.FileRepository, usecase.Log, *updated.ImageId)
			if existing.ImageId != nil && !isConflict(err) {
				keepFile(ctx, usecase.FileRepository, usecase.Log, *existing.ImageId)
			}
		}
		return model.UserResponse{}, err
	}

	if avatar != nil {
		keepFile(ctx, usecase.FileRepository, usecase.Log, *updated.ImageId)
		if existing.ImageId != nil {
			discardFile(ctx, usecase.FileRepository, usecase.Log, *existing.ImageId)
		}
	}

	// Posts embed their creator's name and avatar.
	tags := append(querycache.PostListTags(), querycache.TagUsers, querycache.TagCurrentUser(userId), querycache.TagUserPosts(userId))
	postIds, err := usecase.UserRepository.ListUserPostIds(ctx, userId)
	if err != nil {
		observability.WithContext(ctx, usecase.Log).Warn("failed to list posts for cache invalidation", zap.String("userId", userId.String()), zap.Error(err))
	}
	for _, postId := range postIds {
		tags = append(tags, querycache.TagPost(postId))
	}
	usecase.invalidate(ctx, tags...)

	return updated.ToResponse(), nil
}

func (usecase *UserUsecase) invalidate(ctx context.Context, tags ...string) {
	err := usecase.Cache.Invalidate(ctx, tags...)
	if err != nil {
		observability.WithContext(ctx, usecase.Log).Warn("failed to invalidate query cache", zap.Strings("tags", tags), zap.Error(err))
	}
}
