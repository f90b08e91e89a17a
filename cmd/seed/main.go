package main

import (
	"bytes"
	"context"
	"flag"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"github.com/ferdian3456/snapgram/internal/config"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/ferdian3456/snapgram/internal/util"
	"github.com/google/uuid"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	zapLog "go.uber.org/zap"
)

const seedPassword = "password123"

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Number of posts per user")
	flag.Parse()

	zap := config.NewZap()
	koanf := config.NewKoanf(zap)

	err := config.RunMigrations(koanf.String("POSTGRES_URL"))
	if err != nil {
		zap.Fatal("failed to run migrations", zapLog.Error(err))
	}

	rds := config.NewRedisClient(koanf, zap)
	postgresql := config.NewPostgresqlPool(koanf, zap)
	minio := config.NewMinIO(koanf, zap)
	defer postgresql.Close()

	usecases := config.NewUsecases(&config.ServerConfig{
		Router:  fiber.New(),
		DB:      postgresql,
		DBCache: rds,
		Log:     zap,
		Config:  koanf,
		MinIO:   minio,
	})
	// Seeded accounts get no welcome mail.
	usecases.User.Mailer = nil

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	created := 0
	for i := 0; i < *numUsers; i++ {
		name := gofakeit.Name()
		username := strings.ToLower(gofakeit.Username()) + gofakeit.DigitN(3)
		email := username + "@" + gofakeit.DomainName()

		token, err := usecases.User.SignUp(ctx, model.UserSignUpRequest{
			Name:     name,
			Username: username,
			Email:    email,
			Password: seedPassword,
		})
		if err != nil {
			zap.Warn("failed to seed user", zapLog.String("username", username), zapLog.Error(err))
			continue
		}

		_, userId, err := util.ValidateAccessToken("Bearer "+token.AccessToken, zap, koanf.String("JWT_SECRET_KEY"))
		if err != nil {
			zap.Fatal("failed to read seeded user id", zapLog.Error(err))
		}

		for j := 0; j < *postsPerUser; j++ {
			err = seedPost(ctx, usecases, userId)
			if err != nil {
				zap.Warn("failed to seed post", zapLog.String("username", username), zapLog.Error(err))
				continue
			}
			created++
		}

		zap.Info("seeded user", zapLog.String("email", email), zapLog.String("password", seedPassword))
	}

	zap.Info("seeding finished", zapLog.Int("users", *numUsers), zapLog.Int("posts", created))
	_ = zap.Sync()
}

func seedPost(ctx context.Context, usecases *config.Usecases, userId uuid.UUID) error {
	data, err := generateImage()
	if err != nil {
		return err
	}

	upload, err := util.ProcessImageBytes(data, "image")
	if err != nil {
		return err
	}

	tags := make([]string, gofakeit.Number(1, 4))
	for i := range tags {
		tags[i] = gofakeit.Hobby()
	}

	_, err = usecases.Post.CreatePost(ctx, userId, model.PostCreateRequest{
		Caption:  gofakeit.Sentence(gofakeit.Number(4, 12)),
		Location: gofakeit.City() + ", " + gofakeit.Country(),
		Tags:     strings.Join(tags, ","),
	}, &upload)

	return err
}

// generateImage draws a two-tone PNG in random colours.
func generateImage() ([]byte, error) {
	width := gofakeit.Number(600, 1200)
	height := gofakeit.Number(600, 1200)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	top := randomColor()
	bottom := randomColor()
	for y := 0; y < height; y++ {
		fill := top
		if y > height/2 {
			fill = bottom
		}
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func randomColor() color.RGBA {
	return color.RGBA{
		R: uint8(gofakeit.Number(0, 255)),
		G: uint8(gofakeit.Number(0, 255)),
		B: uint8(gofakeit.Number(0, 255)),
		A: 255,
	}
}
