package services

import (
	"errors"

	"github.com/titorm/fodmap-facil-sub001/models"
	"github.com/titorm/fodmap-facil-sub001/utils"

	"gorm.io/gorm"
)

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

func (s *AuthService) Register(email, password, fullName, anxietyLevel string) (*models.User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if anxietyLevel == "" {
		anxietyLevel = models.AnxietyMedium
	}
	switch anxietyLevel {
	case models.AnxietyLow, models.AnxietyMedium, models.AnxietyHigh:
	default:
		return nil, errors.New("anxiety level must be low, medium or high")
	}

	user := models.User{
		Email:        email,
		Password:     hashed,
		FullName:     fullName,
		AnxietyLevel: anxietyLevel,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Authenticate(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", errors.New("user not found")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("incorrect password")
	}

	return utils.GenerateJWT(user.ID, user.Email)
}
