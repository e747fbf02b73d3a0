package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TypeUser           = "User"
	TypeUserRole       = "UserRole"
	TypeLanguage       = "Language"
	TypeTriviaCategory = "TriviaCategory"
	TypeTriviaQuestion = "TriviaQuestion"
	TypeTriviaReport   = "TriviaReport"
	TypeBlogEntry      = "BlogEntry"
	TypeAnalyticsError = "AnalyticsError"
	TypeChange         = "Change"
)

const (
	RoleAdmin       = "admin"
	RoleTriviaAdmin = "trivia-admin"
)

type User struct {
	ID        string     `gorm:"primaryKey"`
	Username  string     `gorm:"uniqueIndex;not null"`
	Password  string     `gorm:"not null" json:"-"`
	Roles     []UserRole `gorm:"many2many:user_user_roles"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}

	return names
}

type UserRole struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description *string
}

type Language struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	LanguageCode *string
	CountryCode  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TriviaCategory struct {
	ID              string `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	Description     *string
	Submitter       *string
	SubmitterUserID *string
	Verified        bool `gorm:"not null;default:false"`
	Disabled        bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TriviaQuestion struct {
	ID              string `gorm:"primaryKey"`
	Question        string `gorm:"not null"`
	Answer          string `gorm:"not null"`
	CategoryID      *string
	Category        *TriviaCategory
	LanguageID      *string
	Hint1           *string
	Hint2           *string
	Submitter       *string
	SubmitterUserID *string
	Verified        bool `gorm:"not null;default:false"`
	Disabled        bool `gorm:"not null;default:false"`
	UpdatedByID     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int `gorm:"not null;default:1"`
}

type TriviaReport struct {
	ID         string `gorm:"primaryKey"`
	QuestionID string `gorm:"not null;index"`
	Message    string `gorm:"not null"`
	Submitter  string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BlogEntry struct {
	ID                 string `gorm:"primaryKey"`
	Story              string `gorm:"not null;index"`
	Title              string `gorm:"not null"`
	Message            *string
	ImageMimeType      *string
	ImageFileExtension *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type AnalyticsError struct {
	ID        string         `gorm:"primaryKey"`
	Type      string         `gorm:"not null"`
	URL       string         `gorm:"column:url;not null"`
	UserAgent string         `gorm:"not null"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
