package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"walletledger/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register 创建用户及其钱包（初始余额 0），用户名已存在时返回 ErrAlreadyExists
// passwordHash 由调用方生成，记账核心不处理密码
func (s *Service) Register(ctx context.Context, username, passwordHash, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: 用户名不能为空", ErrInvalidInput)
	}

	var user *models.User
	err := s.inTx(ctx, func(tx *gorm.DB, _ *alerts) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}

		user = &models.User{Username: username, Password: passwordHash, Email: email}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("创建用户失败: %w", err)
		}

		wallet := &models.Wallet{UserID: user.ID, Balance: 0}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("创建钱包失败: %w", err)
		}
		user.Wallet = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindUser 按用户名查询用户（含钱包）
func (s *Service) FindUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Wallet").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(username)
		}
		return nil, err
	}
	return &user, nil
}

// GetUser 按 ID 查询用户（含钱包）
func (s *Service) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Wallet").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: ErrUserNotFound.Resource, Key: fmt.Sprint(userID)}
		}
		return nil, err
	}
	return &user, nil
}

// EmailOf 用户绑定的邮箱，未绑定或用户不存在时返回空串
func (s *Service) EmailOf(ctx context.Context, username string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "email").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// Authenticate 校验用户名与密码，用户不存在或密码错误都返回 ErrIncorrectCredential
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.FindUser(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrIncorrectCredential
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrIncorrectCredential
	}
	return user, nil
}
