package model

// User is the persisted record, one JSON object per email in the record
// store. DOB is an ISO-8601 full date (YYYY-MM-DD).
type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	DOB          string `json:"dob"`
	PasswordHash string `json:"password_hash"`
}

// Profile is the outward view of a user. It never carries the password hash.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob"`
}

func (u *User) Profile() *Profile {
	return &Profile{Name: u.Name, Email: u.Email, DOB: u.DOB}
}
