package models

import "time"

// Post is a company publication. Boost mirrors the like ledger and is only
// written from a fresh aggregation.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"not null;index:idx_posts_company_posted,priority:1" json:"company_id"`
	MediaURL    string    `gorm:"type:text;not null" json:"media_url"`
	Description []byte    `gorm:"column:post_description;not null" json:"-"`
	Text        string    `gorm:"-" json:"post_description"`
	PostedAt    time.Time `gorm:"not null;index:idx_posts_company_posted,priority:2" json:"posted_at"`
	Boost       int64     `gorm:"not null;default:0;check:chk_posts_boost_non_negative,boost >= 0" json:"boost"`
}

// LikeEvent records that a company liked a post. (PostID, CompanyID) is the
// primary key, so the store rejects a second like.
type LikeEvent struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CompanyID uint      `gorm:"primaryKey;autoIncrement:false" json:"company_id"`
	LikedAt   time.Time `gorm:"not null" json:"liked_at"`
}

// TableName returns the ledger table name.
func (LikeEvent) TableName() string {
	return "post_likes"
}
