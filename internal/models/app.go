package models

import "time"

// App is a saved application's metadata in the relational store.
type App struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	Path       string    `json:"path" gorm:"not null;uniqueIndex"`
	TemplateID string    `json:"templateId" gorm:"column:template_id;not null;default:default"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Chat is one conversation attached to an app.
type Chat struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AppID     uint      `json:"appId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
