package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID          uuid.UUID `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email       string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Password    string    `gorm:"size:255;not null" json:"password"`
	Role        UserRole  `gorm:"type:enum('CITIZEN', 'WILDLIFE_OFFICER');default:CITIZEN" json:"role"`
	IsGuest     bool      `gorm:"-" json:"is_guest"`
	Mobile      string    `gorm:"size:20" json:"mobile"`
	AltMobile   *string   `gorm:"size:20" json:"alt_mobile"`
	Designation *string   `gorm:"size:100" json:"designation"`
	State       string    `gorm:"size:100;index:idx_users_region" json:"state"`
	District    string    `gorm:"size:100;index:idx_users_region" json:"district"`
	Taluk       string    `gorm:"size:100" json:"taluk"`
	Village     string    `gorm:"size:100" json:"village"`
	Landmark    string    `gorm:"size:255" json:"landmark"`
	Pincode     string    `gorm:"size:10" json:"pincode"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Role        UserRole `json:"role" binding:"required"`
	Mobile      string   `json:"mobile" binding:"required"`
	AltMobile   string   `json:"alt_mobile"`
	Designation string   `json:"designation"`
	State       string   `json:"state" binding:"required"`
	District    string   `json:"district" binding:"required"`
	Taluk       string   `json:"taluk" binding:"required"`
	Village     string   `json:"village" binding:"required"`
	Landmark    string   `json:"landmark"`
	Pincode     string   `json:"pincode" binding:"required"`
}

// ProfileUpdate carries the mutable profile fields. Role is immutable after
// registration and deliberately absent here.
type ProfileUpdate struct {
	Name        string  `json:"name"`
	Mobile      string  `json:"mobile"`
	AltMobile   *string `json:"alt_mobile"`
	Designation *string `json:"designation"`
	State       string  `json:"state"`
	District    string  `json:"district"`
	Taluk       string  `json:"taluk"`
	Village     string  `json:"village"`
	Landmark    string  `json:"landmark"`
	Pincode     string  `json:"pincode"`
}

/*
caches:
	User:$userId
	Token:$token -> userId
	Tokens:$userId -> set of live tokens
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.ID.String())
}

func (result *User) PrepareGive() {
	result.Password = ""
}

type LoginInfo struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {

	db := config.GetDB()

	email = strings.ToLower(strings.TrimSpace(email))
	user := User{}
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&user).Error; err != nil {
		if serr := storeError(err); !errors.Is(serr, utils.ErrorRecordNotFound) {
			return nil, serr
		}
		// Unknown address reads the same as a wrong password.
		return nil, errors.New("invalid email or password")
	}

	err := utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	token := uuid.New().String()
	if err := config.AddRedisSet("Tokens:"+user.ID.String(), token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.ID.String(), tokenLifespan()); err != nil {
		return nil, err
	}

	user.PrepareGive()
	return &LoginInfo{Token: token, User: &user}, nil
}

// NewGuestSession issues a session for an ephemeral citizen principal. The
// principal lives only in redis for the token lifespan; it is never written to
// the users table.
func NewGuestSession(ctx context.Context) (*LoginInfo, error) {
	guest := User{
		ID:      uuid.New(),
		Name:    "Guest Reporter",
		Role:    UserRoleCitizen,
		IsGuest: true,
	}

	token := uuid.New().String()
	if err := config.SetRedisObject("User:"+guest.ID.String(), &guest, tokenLifespan()); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, guest.ID.String(), tokenLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{Token: token, User: &guest}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, nil
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+userId, token); err != nil {
		return false, err
	}
	return true, nil
}

func (user *User) DestroyAllSessions(ctx context.Context) error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.ID.String())
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	return config.RemoveRedisKey("Tokens:" + user.ID.String())
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(input.Email) {
		return nil, utils.NewValidationError("email", "invalid email address")
	}
	if len(strings.TrimSpace(input.Password)) < 6 {
		return nil, utils.NewValidationError("password", "must be at least 6 characters")
	}
	if !input.Role.Valid() {
		return nil, utils.NewValidationError("role", "invalid role")
	}
	if err := utils.ValidatePhoneNumber(input.Mobile, utils.CountryCode); err != nil {
		return nil, utils.NewValidationError("mobile", err.Error())
	}
	if err := utils.RequireNonEmpty(
		utils.RequiredField{Name: "state", Value: input.State},
		utils.RequiredField{Name: "district", Value: input.District},
		utils.RequiredField{Name: "taluk", Value: input.Taluk},
		utils.RequiredField{Name: "village", Value: input.Village},
		utils.RequiredField{Name: "pincode", Value: input.Pincode},
	); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error
	if err != nil {
		return nil, storeError(err)
	}
	if count > 0 {
		return nil, utils.NewValidationError("email", "already registered")
	}

	hashedPassword, err := utils.HashPassword(strings.TrimSpace(input.Password))
	if err != nil {
		return nil, err
	}

	user := User{
		ID:          uuid.New(),
		Name:        html.EscapeString(strings.TrimSpace(input.Name)),
		Email:       input.Email,
		Password:    string(hashedPassword),
		Role:        input.Role,
		Mobile:      strings.TrimSpace(input.Mobile),
		AltMobile:   utils.NilIfEmpty(strings.TrimSpace(input.AltMobile)),
		Designation: utils.NilIfEmpty(strings.TrimSpace(input.Designation)),
		State:       input.State,
		District:    input.District,
		Taluk:       input.Taluk,
		Village:     input.Village,
		Landmark:    input.Landmark,
		Pincode:     input.Pincode,
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError(err)
	}
	user.PrepareGive()
	return &user, nil
}

func GetUser(ctx context.Context, id string) (*User, error) {

	db := config.GetDB()
	var result User

	// Guests and hot users live in redis.
	exists, err := config.GetRedisObject("User:"+id, &result)
	if err != nil {
		return nil, err
	}
	if exists {
		return &result, nil
	}

	// A missing row and a store outage are different answers: the first is
	// permanent, the second must not evict the caller's session as unknown.
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Take(&result).Error; err != nil {
		return nil, storeError(err)
	}

	result.PrepareGive()
	if err := config.SetRedisObject("User:"+id, &result, time.Hour); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSessionUser resolves the authenticated principal from context.
func GetSessionUser(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, utils.ErrorUnauthorized
	}
	return GetUser(ctx, userId)
}

func UpdateProfile(ctx context.Context, input *ProfileUpdate) (*User, error) {

	db := config.GetDB()

	user, err := GetSessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.IsGuest {
		return nil, utils.ErrorUnauthorized
	}

	if input.Mobile != "" {
		if err := utils.ValidatePhoneNumber(input.Mobile, utils.CountryCode); err != nil {
			return nil, utils.NewValidationError("mobile", err.Error())
		}
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(input.Name) != "" {
		updates["name"] = html.EscapeString(strings.TrimSpace(input.Name))
	}
	if input.Mobile != "" {
		updates["mobile"] = strings.TrimSpace(input.Mobile)
	}
	if input.AltMobile != nil {
		updates["alt_mobile"] = utils.NilIfEmpty(strings.TrimSpace(*input.AltMobile))
	}
	if input.Designation != nil {
		updates["designation"] = utils.NilIfEmpty(strings.TrimSpace(*input.Designation))
	}
	for column, value := range map[string]string{
		"state": input.State, "district": input.District, "taluk": input.Taluk,
		"village": input.Village, "landmark": input.Landmark, "pincode": input.Pincode,
	} {
		if strings.TrimSpace(value) != "" {
			updates[column] = value
		}
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, storeError(err)
		}
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}

	return GetUser(ctx, user.ID.String())
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	db := config.GetDB()

	user, err := GetSessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.IsGuest {
		return nil, utils.ErrorUnauthorized
	}

	var stored User
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Take(&stored).Error; err != nil {
		return nil, storeError(err)
	}
	if err := utils.ComparePassword(stored.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return nil, utils.NewValidationError("password", "must be at least 6 characters")
	}

	hashedPassword, err := utils.HashPassword(strings.TrimSpace(newPassword))
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).
		UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		return nil, storeError(err)
	}
	if err := stored.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	if err := stored.DestroyAllSessions(ctx); err != nil {
		return nil, err
	}

	stored.PrepareGive()
	return &stored, nil
}

// RequestPasswordReset issues a signed reset token for the account. The caller
// emails it; an unknown address returns ErrorRecordNotFound so handlers can
// respond without disclosing which addresses exist.
func RequestPasswordReset(ctx context.Context, email string) (string, *User, error) {
	db := config.GetDB()

	email = strings.ToLower(strings.TrimSpace(email))
	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&user).Error; err != nil {
		return "", nil, storeError(err)
	}

	token, err := utils.JwtGenerateResetToken(user.ID.String())
	if err != nil {
		return "", nil, err
	}
	user.PrepareGive()
	return token, &user, nil
}

func ResetPassword(ctx context.Context, resetToken string, newPassword string) error {
	db := config.GetDB()

	userId, err := utils.JwtValidateResetToken(resetToken)
	if err != nil {
		return utils.NewValidationError("token", "invalid or expired reset token")
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return utils.NewValidationError("password", "must be at least 6 characters")
	}

	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", userId).Take(&user).Error; err != nil {
		return storeError(err)
	}

	hashedPassword, err := utils.HashPassword(strings.TrimSpace(newPassword))
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).
		UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		return storeError(err)
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return err
	}
	return user.DestroyAllSessions(ctx)
}

// DeleteAccount removes the profile after password re-entry. Reports the user
// already filed keep their denormalized reporter snapshot.
func DeleteAccount(ctx context.Context, password string) error {
	db := config.GetDB()

	user, err := GetSessionUser(ctx)
	if err != nil {
		return err
	}
	if user.IsGuest {
		return utils.ErrorUnauthorized
	}

	var stored User
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Take(&stored).Error; err != nil {
		return storeError(err)
	}
	if err := utils.ComparePassword(stored.Password, password); err != nil {
		return errors.New("password is wrong")
	}

	if err := db.WithContext(ctx).Delete(&User{}, "id = ?", user.ID).Error; err != nil {
		return storeError(err)
	}
	if err := stored.RemoveInstanceRedis(); err != nil {
		return err
	}
	return stored.DestroyAllSessions(ctx)
}

// GetOfficersForNotification resolves the wildlife officers responsible for a
// report's district, falling back to state-wide when none are registered
// in-district. Officers without an email address are skipped.
func GetOfficersForNotification(ctx context.Context, district string, state string) ([]*User, error) {
	db := config.GetDB()

	var officers []*User
	err := db.WithContext(ctx).Model(&User{}).
		Where("role = ? AND district = ? AND email <> ''", UserRoleOfficer, district).
		Find(&officers).Error
	if err != nil {
		return nil, storeError(err)
	}
	if len(officers) == 0 {
		err = db.WithContext(ctx).Model(&User{}).
			Where("role = ? AND state = ? AND email <> ''", UserRoleOfficer, state).
			Find(&officers).Error
		if err != nil {
			return nil, storeError(err)
		}
	}

	for _, officer := range officers {
		officer.PrepareGive()
	}
	return officers, nil
}
