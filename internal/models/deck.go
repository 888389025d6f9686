package models

import "time"

// Deck is the stored form of a generated deck. Slides are kept as JSON
// because Firestore cannot hold the nested arrays of table rows.
type Deck struct {
	ID              string    `firestore:"id" json:"id"`
	ProjectName     string    `firestore:"projectName" json:"projectName"`
	SlidesJSON      string    `firestore:"slidesJson" json:"-"`
	SlideCount      int       `firestore:"slideCount" json:"slideCount"`
	IssueCount      int       `firestore:"issueCount" json:"issueCount"`
	BriefCiphertext string    `firestore:"briefCiphertext,omitempty" json:"-"`
	AttachmentCount int       `firestore:"attachmentCount" json:"attachmentCount"`
	Model           string    `firestore:"model,omitempty" json:"model,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	ExpiresAt       time.Time `firestore:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the Firestore TTL policy may already have removed
// the document; deletion is lazy, so reads check it too.
func (d *Deck) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}
