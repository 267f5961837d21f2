package domain

// UserProfile is the authenticated-user record as returned by the user
// service.
type UserProfile struct {
	Fullname       string `json:"fullname"`
	Email          string `json:"email"`
	Contact        string `json:"contact"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Country        string `json:"country"`
	ProfilePicture string `json:"profilePicture"`
	Admin          bool   `json:"admin"`
	IsVerified     bool   `json:"isVerified"`
}

// Session is the session store's state. Invariant:
// IsAuthenticated == true exactly when User != nil; transitions must set the
// pair together.
type Session struct {
	User            *UserProfile `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsCheckingAuth  bool         `json:"isCheckingAuth"`
	Loading         bool         `json:"loading"`
}

// Valid reports whether the authentication pairing invariant holds.
func (s Session) Valid() bool {
	return s.IsAuthenticated == (s.User != nil)
}

// SignupInput carries the fields the signup endpoint accepts.
type SignupInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput carries the editable profile fields for profile update.
type ProfileInput struct {
	Fullname       string `json:"fullname"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Country        string `json:"country"`
	ProfilePicture string `json:"profilePicture"`
}
