package users

// MenuItem is one entry of a role's navigation.
type MenuItem struct {
	Key   string
	Label string
	Path  string
}

var (
	publicMenu = []MenuItem{
		{Key: "home", Label: "Home", Path: "/"},
		{Key: "doctors", Label: "Doctors", Path: "/doctors"},
		{Key: "about", Label: "About", Path: "/about"},
		{Key: "contact", Label: "Contact", Path: "/contact"},
	}

	patientMenu = append(append([]MenuItem{}, publicMenu...),
		MenuItem{Key: "appointment", Label: "Appointments", Path: "/appointment"},
		MenuItem{Key: "chatbot", Label: "Symptom checker", Path: "/chatbot"},
		MenuItem{Key: "profile", Label: "Profile", Path: "/profile"},
	)

	doctorMenu = []MenuItem{
		{Key: "appointments", Label: "Appointments", Path: "/doctor/appointments"},
		{Key: "patient-list", Label: "Patient list", Path: "/doctor/patient-list"},
		{Key: "profile", Label: "Profile", Path: "/doctor/profile"},
	}

	adminMenu = []MenuItem{
		{Key: "dashboard", Label: "Dashboard", Path: "/admin/"},
		{Key: "users", Label: "Users", Path: "/admin/users"},
		{Key: "doctors", Label: "Doctors", Path: "/admin/doctors"},
		{Key: "patients", Label: "Patients", Path: "/admin/patients"},
		{Key: "appointments", Label: "Appointments", Path: "/admin/appointments"},
	}
)

// Navigation returns the menu for role. Anything that is not a known role
// (including no session) gets the public menu.
func Navigation(role RoleType) []MenuItem {
	var menu []MenuItem
	switch role {
	case RolePatient:
		menu = patientMenu
	case RoleDoctor:
		menu = doctorMenu
	case RoleAdmin:
		menu = adminMenu
	default:
		menu = publicMenu
	}
	return append([]MenuItem(nil), menu...)
}

