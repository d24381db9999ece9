package main

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Browse the doctor directory",
	}

	var specialization string
	list := &cobra.Command{
		Use:   "list",
		Short: "List doctors, optionally for one department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			var found []doctors.Doctor
			if specialization != "" {
				found, err = a.doctors.BySpecialization(cmd.Context(), specialization)
			} else {
				found, err = a.doctors.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(c.out, "No doctors found.")
				return nil
			}
			c.doctorTable(found)
			return nil
		},
	}
	list.Flags().StringVar(&specialization, "specialization", "",
		"department: "+strings.Join(doctors.Specializations, ", "))

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			d, err := a.doctors.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.doctorTable([]doctors.Doctor{*d})
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func (c *cli) doctorTable(list []doctors.Doctor) {
	w := c.table("ID", "NAME", "SPECIALIZATION", "EXPERIENCE", "LICENSE", "PHONE")
	for _, d := range list {
		row(w, d.ID, d.FullName, d.Specialization, fmt.Sprintf("%d yrs", d.YearsOfExperience), orDash(d.LicenseNumber), orDash(d.PhoneNumber))
	}
	_ = w.Flush()
}

func (c *cli) patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse the patient registry (doctors and admins)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List patients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.patientSearch(cmd, "")
		},
	}

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find patients by name, email or phone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.patientSearch(cmd, strings.Join(args, " "))
		},
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context(), users.RoleDoctor, users.RoleAdmin)
			if err != nil {
				return err
			}
			p, err := a.patients.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.patientDetail(p)
			return nil
		},
	}

	cmd.AddCommand(list, search, get)
	return cmd
}

func (c *cli) patientSearch(cmd *cobra.Command, query string) error {
	a, _, err := c.session(cmd.Context(), users.RoleDoctor, users.RoleAdmin)
	if err != nil {
		return err
	}
	found, err := a.patients.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(c.out, "No patients found.")
		return nil
	}
	patients.SortNewestFirst(found)
	w := c.table("ID", "NAME", "EMAIL", "GENDER", "BORN", "PHONE")
	for _, p := range found {
		row(w, p.ID, orDash(p.FullName), orDash(p.Email), orDash(p.Gender), orDash(p.DateOfBirth), orDash(p.PhoneNumber))
	}
	return w.Flush()
}

func (c *cli) patientDetail(p *patients.Patient) {
	fmt.Fprintf(c.out, "%s (#%d)\n", orDash(p.FullName), p.ID)
	fmt.Fprintf(c.out, "email:      %s\n", orDash(p.Email))
	fmt.Fprintf(c.out, "born:       %s\n", orDash(p.DateOfBirth))
	fmt.Fprintf(c.out, "gender:     %s\n", orDash(p.Gender))
	fmt.Fprintf(c.out, "phone:      %s\n", orDash(p.PhoneNumber))
	fmt.Fprintf(c.out, "address:    %s\n", orDash(p.Address))
	fmt.Fprintf(c.out, "blood type: %s\n", orDash(utils.Value(p.BloodType)))
	fmt.Fprintf(c.out, "history:    %s\n", orDash(p.MedicalHistory))
}
