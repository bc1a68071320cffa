// Package review mirrors the catalog's review resource.
package review

// Review mirrors the backend review payload.
type Review struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"propertyId"`
	UserID     int64  `json:"userId"`
	UserName   string `json:"userName,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Draft is the payload for creating or updating a review. One review per
// user per property is a backend rule, not checked here.
type Draft struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}
