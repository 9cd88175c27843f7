package validators

// RegisterForm is the public sign-up form.
type RegisterForm struct {
	Username    string `form:"username" label:"Username" validate:"required,min=3,max=50"`
	Password    string `form:"password" label:"Password" validate:"required,min=6" trim:"false"`
	Email       string `form:"email" label:"Email" validate:"required,email,max=100"`
	FirstName   string `form:"firstName" label:"First name" validate:"required,max=50"`
	LastName    string `form:"lastName" label:"Last name" validate:"required,max=50"`
	PhoneNumber string `form:"phoneNumber" label:"Phone number" validate:"omitempty,max=20"`
}

type LoginForm struct {
	Username string `form:"username" label:"Username" validate:"required"`
	Password string `form:"password" label:"Password" validate:"required" trim:"false"`
}

// LotForm backs both the create and the edit lot pages. Every field is
// written on submit, so status is required.
type LotForm struct {
	LotName     string `form:"lotName" label:"Lot name" validate:"required,max=100"`
	Location    string `form:"location" label:"Location" validate:"required,max=255"`
	Description string `form:"description" label:"Description" validate:"max=1000"`
	Capacity    int    `form:"capacity" label:"Capacity" validate:"min=1,max=2147483647"`
	Status      string `form:"status" label:"Status" validate:"required,oneof=AVAILABLE MAINTENANCE CLOSED"`
}

type OccupancyForm struct {
	OccupiedSlots int `form:"occupiedSlots" label:"Occupied slots" validate:"min=0"`
}

// ProfileForm holds the editable profile fields; the username is not editable.
type ProfileForm struct {
	Email       string `form:"email" label:"Email" validate:"required,email,max=100"`
	FirstName   string `form:"firstName" label:"First name" validate:"required,max=50"`
	LastName    string `form:"lastName" label:"Last name" validate:"required,max=50"`
	PhoneNumber string `form:"phoneNumber" label:"Phone number" validate:"omitempty,max=20"`
}

// PasswordForm leaves length and confirmation checks to the handler, which
// reports them as page-level messages.
type PasswordForm struct {
	OldPassword     string `form:"oldPassword" trim:"false"`
	NewPassword     string `form:"newPassword" trim:"false"`
	ConfirmPassword string `form:"confirmPassword" trim:"false"`
}
