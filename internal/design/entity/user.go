package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray is stored as a jsonb column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}
}

// User is an internal account with workflow roles.
type User struct {
	ID           string      `json:"id" gorm:"primaryKey;size:32"`
	Username     string      `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Name         string      `json:"name" gorm:"size:128;not null"`
	Email        string      `json:"email" gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string      `json:"-" gorm:"size:128;not null"`
	Roles        StringArray `json:"roles" gorm:"type:jsonb"`
	Status       string      `json:"status" gorm:"size:16;default:active"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
