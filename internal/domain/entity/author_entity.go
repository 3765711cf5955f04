package entity

// AuthorProfile is provisioned out of band, one per User.
// Bio and Age are nullable; Image holds the stored media URL or "".
type AuthorProfile struct {
	ID     int64
	UserID int64
	User   User
	Bio    *string
	Age    *int
	Image  string
}
