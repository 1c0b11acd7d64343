package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

type Profile struct {
	Desc      string `json:"desc"`
	AvatarURL string `json:"avatar_url"`
	BannerURL string `json:"banner_url"`
}

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

func (u *User) clone() *User {
	c := *u
	return &c
}
