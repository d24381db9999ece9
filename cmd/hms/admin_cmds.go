package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/dashboard"
	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration (admins)",
	}
	cmd.AddCommand(c.dashboardCmd(), c.adminUsersCmd(), c.adminDoctorsCmd(), c.adminPatientsCmd())
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Appointment totals for the last week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			s, err := dashboard.Load(cmd.Context(), a.appointments, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "appointments:    %d\n", s.TotalAppointments)
			fmt.Fprintf(c.out, "unique patients: %d\n", s.UniquePatients)
			for _, st := range appointments.Statuses {
				fmt.Fprintf(c.out, "%-16s %d\n", st.String()+":", s.ByStatus[st])
			}
			fmt.Fprintln(c.out)
			w := c.table("DAY", "APPOINTMENTS", "")
			for _, d := range s.Daily {
				row(w, d.Date, d.Count, strings.Repeat("#", d.Count))
			}
			return w.Flush()
		},
	}
}

func (c *cli) adminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			all, err := a.users.List(cmd.Context())
			if err != nil {
				return err
			}
			w := c.table("ID", "NAME", "EMAIL", "ROLE")
			for _, u := range all {
				row(w, u.ID, orDash(u.FullName), u.Email, u.Role)
			}
			return w.Flush()
		},
	}

	var in userFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			input, err := in.input(users.UserInput{})
			if err != nil {
				return err
			}
			u, err := a.users.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "User #%d %s (%s) created.\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	in.bind(create)

	var upd userFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change an account; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			current, err := a.users.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			input, err := upd.input(users.UserInput{Email: current.Email, FullName: current.FullName, Role: current.Role})
			if err != nil {
				return err
			}
			u, err := a.users.Update(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "User #%d %s (%s) updated.\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	upd.bind(update)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.adminDelete(cmd, args[0], "User", func(a *app, id int64) error {
				return a.users.Delete(cmd.Context(), id)
			})
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}

type userFlags struct {
	email, name, role, password string
}

func (f *userFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "email")
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.role, "role", "", "patient, doctor or admin")
	cmd.Flags().StringVar(&f.password, "password", "", "password")
}

// input overlays the flags that were given on base.
func (f *userFlags) input(base users.UserInput) (users.UserInput, error) {
	if f.email != "" {
		base.Email = f.email
	}
	if f.name != "" {
		base.FullName = f.name
	}
	if f.password != "" {
		base.Password = f.password
	}
	if f.role != "" {
		role, err := users.ParseRole(f.role)
		if err != nil {
			return users.UserInput{}, err
		}
		base.Role = role
	}
	return base, nil
}

func (c *cli) adminDoctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Manage doctor records",
	}

	var in doctorFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the doctor record for a doctor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			d, err := a.doctors.Create(cmd.Context(), in.input(doctors.Input{}, cmd.Flags().Changed))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Doctor #%d %s (%s) created.\n", d.ID, d.FullName, d.Specialization)
			return nil
		},
	}
	in.bind(create)

	var upd doctorFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a doctor record; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			current, err := a.doctors.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			base := doctors.Input{
				UserID:            current.UserID,
				FullName:          current.FullName,
				Specialization:    current.Specialization,
				YearsOfExperience: current.YearsOfExperience,
				LicenseNumber:     current.LicenseNumber,
				PhoneNumber:       current.PhoneNumber,
			}
			d, err := a.doctors.Update(cmd.Context(), id, upd.input(base, cmd.Flags().Changed))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Doctor #%d %s (%s) updated.\n", d.ID, d.FullName, d.Specialization)
			return nil
		},
	}
	upd.bind(update)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a doctor record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.adminDelete(cmd, args[0], "Doctor", func(a *app, id int64) error {
				return a.doctors.Delete(cmd.Context(), id)
			})
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

type doctorFlags struct {
	doctors.Input
}

func (f *doctorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.UserID, "user", 0, "user account id")
	cmd.Flags().StringVar(&f.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&f.Specialization, "specialization", "", strings.Join(doctors.Specializations, ", "))
	cmd.Flags().IntVar(&f.YearsOfExperience, "experience", 0, "years of experience")
	cmd.Flags().StringVar(&f.LicenseNumber, "license", "", "license number")
	cmd.Flags().StringVar(&f.PhoneNumber, "phone", "", "phone number")
}

// input overlays the flags that were set on base.
func (f *doctorFlags) input(base doctors.Input, changed func(string) bool) doctors.Input {
	if changed("user") {
		base.UserID = f.UserID
	}
	if changed("name") {
		base.FullName = f.FullName
	}
	if changed("specialization") {
		base.Specialization = f.Specialization
	}
	if changed("experience") {
		base.YearsOfExperience = f.YearsOfExperience
	}
	if changed("license") {
		base.LicenseNumber = f.LicenseNumber
	}
	if changed("phone") {
		base.PhoneNumber = f.PhoneNumber
	}
	return base
}

func (c *cli) adminPatientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage patient records",
	}

	var in patientFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the patient record for a patient account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			p, err := a.patients.Create(cmd.Context(), in.input(patients.Input{}, cmd.Flags().Changed))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Patient #%d for user #%d created.\n", p.ID, p.UserID)
			return nil
		},
	}
	in.bind(create)

	var upd patientFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a patient record; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			current, err := a.patients.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			base := patients.Input{
				UserID:         current.UserID,
				FullName:       current.FullName,
				Email:          current.Email,
				DateOfBirth:    current.DateOfBirth,
				Gender:         current.Gender,
				PhoneNumber:    current.PhoneNumber,
				Address:        current.Address,
				BloodType:      current.BloodType,
				MedicalHistory: current.MedicalHistory,
			}
			p, err := a.patients.Update(cmd.Context(), id, upd.input(base, cmd.Flags().Changed))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Patient #%d updated.\n", p.ID)
			return nil
		},
	}
	upd.bind(update)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.adminDelete(cmd, args[0], "Patient", func(a *app, id int64) error {
				return a.patients.Delete(cmd.Context(), id)
			})
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

type patientFlags struct {
	patients.Input
	bloodType string
}

func (f *patientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.UserID, "user", 0, "user account id")
	cmd.Flags().StringVar(&f.DateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&f.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.Address, "address", "", "address")
	cmd.Flags().StringVar(&f.bloodType, "blood-type", "", "blood type, e.g. O+")
	cmd.Flags().StringVar(&f.MedicalHistory, "history", "", "medical history")
}

// input overlays the flags that were set on base.
func (f *patientFlags) input(base patients.Input, changed func(string) bool) patients.Input {
	if changed("user") {
		base.UserID = f.UserID
	}
	if changed("dob") {
		base.DateOfBirth = f.DateOfBirth
	}
	if changed("gender") {
		base.Gender = f.Gender
	}
	if changed("phone") {
		base.PhoneNumber = f.PhoneNumber
	}
	if changed("address") {
		base.Address = f.Address
	}
	if changed("blood-type") {
		base.BloodType = nil
		if f.bloodType != "" {
			base.BloodType = utils.Ptr(f.bloodType)
		}
	}
	if changed("history") {
		base.MedicalHistory = f.MedicalHistory
	}
	return base
}

func (c *cli) adminDelete(cmd *cobra.Command, arg, what string, del func(*app, int64) error) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, _, err := c.session(cmd.Context(), users.RoleAdmin)
	if err != nil {
		return err
	}
	if err := del(a, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s #%d deleted.\n", what, id)
	return nil
}
