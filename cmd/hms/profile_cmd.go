package main

import (
	"fmt"

	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the patient or doctor record linked to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, user, err := c.session(cmd.Context(), users.RolePatient, users.RoleDoctor)
			if err != nil {
				return err
			}
			if user.Role == users.RoleDoctor {
				d, err := a.doctors.ByUser(cmd.Context(), user.ID)
				if gateway.IsNotFound(err) {
					return fmt.Errorf("[hms profile] user %d: %w", user.ID, apperrors.ErrDoctorNotFound)
				}
				if err != nil {
					return err
				}
				c.doctorDetail(d)
				return nil
			}
			p, err := a.patients.ByUser(cmd.Context(), user.ID)
			if gateway.IsNotFound(err) {
				return fmt.Errorf("[hms profile] user %d: %w", user.ID, apperrors.ErrPatientNotFound)
			}
			if err != nil {
				return err
			}
			c.patientDetail(p)
			return nil
		},
	}
}

func (c *cli) doctorDetail(d *doctors.Doctor) {
	fmt.Fprintf(c.out, "%s (#%d)\n", d.FullName, d.ID)
	fmt.Fprintf(c.out, "specialization: %s\n", d.Specialization)
	fmt.Fprintf(c.out, "experience:     %d yrs\n", d.YearsOfExperience)
	fmt.Fprintf(c.out, "license:        %s\n", orDash(d.LicenseNumber))
	fmt.Fprintf(c.out, "phone:          %s\n", orDash(d.PhoneNumber))
}
