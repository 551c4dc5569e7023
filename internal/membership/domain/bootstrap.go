package domain

type BootstrapData struct {
	Email    string
	Password string
	Profile  Profile
}
