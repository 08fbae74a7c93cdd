package model

import (
	"strconv"
	"time"
)

type PostType string

const (
	PostText  PostType = "text"
	PostImage PostType = "image"
)

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        int64     `json:"id"`
	Alias     string    `json:"alias,omitempty"`
	Name      string    `json:"name,omitempty"`
	Lastname  string    `json:"lastname,omitempty"`
	Email     string    `json:"email,omitempty"`
	Birthdate string    `json:"birthdate,omitempty"`
	Role      *Role     `json:"role,omitempty"`
	RoleName  string    `json:"roleName,omitempty"`
	Created   time.Time `json:"created,omitempty"`
	Updated   time.Time `json:"updated,omitempty"`
}

// RoleLabel prefers the nested role object over the flat roleName field.
func (u User) RoleLabel() string {
	if u.Role != nil && u.Role.Name != "" {
		return u.Role.Name
	}
	return u.RoleName
}

type Post struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"authorId"`
	Author       *User     `json:"author,omitempty"`
	Type         PostType  `json:"type"`
	TextContent  string    `json:"textContent,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	LikedByMe    *bool     `json:"likedByMe,omitempty"`
}

// Liked reports likedByMe, treating an absent field as false.
func (p Post) Liked() bool {
	return p.LikedByMe != nil && *p.LikedByMe
}

func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
