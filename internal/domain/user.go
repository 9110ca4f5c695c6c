package domain

import "time"

type Photo struct {
	URL string `bson:"url" json:"url"`
}

type Preferences struct {
	AgeMin        int  `bson:"age_min" json:"age_min"`
	AgeMax        int  `bson:"age_max" json:"age_max"`
	ShowMen       bool `bson:"show_men" json:"show_men"`
	ShowWomen     bool `bson:"show_women" json:"show_women"`
	ShowNonBinary bool `bson:"show_non_binary" json:"show_non_binary"`
}

type User struct {
	ID           string      `bson:"_id" json:"id"`
	FirstName    string      `bson:"first_name" json:"first_name"`
	LastName     string      `bson:"last_name" json:"last_name"`
	Age          int         `bson:"age" json:"age"`
	Gender       string      `bson:"gender" json:"gender"`
	InterestedIn []string    `bson:"interested_in" json:"interested_in"`
	Bio          string      `bson:"bio" json:"bio"`
	Photos       []Photo     `bson:"photos" json:"photos"`
	Preferences  Preferences `bson:"preferences" json:"preferences"`

	// Interest sets owned by the match engine. Everything else on the
	// document belongs to the profile layer.
	Likes    []string `bson:"likes" json:"-"`
	Dislikes []string `bson:"dislikes" json:"-"`
	Matches  []string `bson:"matches" json:"-"`

	IsProfileComplete bool      `bson:"is_profile_complete" json:"is_profile_complete"`
	LastActive        time.Time `bson:"last_active" json:"last_active"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// PublicProfile is the subset of User exposed to counterparts.
type PublicProfile struct {
	ID        string  `bson:"_id" json:"id"`
	FirstName string  `bson:"first_name" json:"first_name"`
	LastName  string  `bson:"last_name" json:"last_name"`
	Age       int     `bson:"age" json:"age"`
	Gender    string  `bson:"gender" json:"gender"`
	Bio       string  `bson:"bio" json:"bio"`
	Photos    []Photo `bson:"photos" json:"photos"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Photos:    u.Photos,
	}
}

func (u *User) HasLiked(target string) bool {
	for _, id := range u.Likes {
		if id == target {
			return true
		}
	}
	return false
}
