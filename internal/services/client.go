package services

// Client groups the resource clients bound to one session. Fields are
// interfaces so view controllers can be exercised against fakes.
type Client struct {
	Auth     AuthServiceProvider
	Projects ProjectServiceProvider
	Requests RequestServiceProvider
	Team     TeamServiceProvider
	Users    UserServiceProvider
}

// NewClient binds every resource client to creds.
func NewClient(backend *Backend, creds Credentials) *Client {
	return &Client{
		Auth:     NewAuthService(backend, creds),
		Projects: NewProjectService(backend, creds),
		Requests: NewRequestService(backend, creds),
		Team:     NewTeamService(backend, creds),
		Users:    NewUserService(backend, creds),
	}
}
