package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/jrsteele09/go-hospital-client/records"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "List, book and work appointments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Your appointments, your queue, or everything for admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, user, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			found, err := a.workflow.ForCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(c.out, "No appointments.")
				return nil
			}
			names := map[int64]string{}
			if all, err := a.doctors.List(cmd.Context()); err == nil {
				names = doctors.Names(all)
			} else {
				a.log.Debug().Err(err).Msg("doctor names unavailable")
			}
			w := c.table("ID", "DATE", "TIME", "DOCTOR", "PATIENT", "STATUS", "ACTIONS")
			for _, appt := range found {
				doctor := names[appt.DoctorID]
				if doctor == "" {
					doctor = "#" + strconv.FormatInt(appt.DoctorID, 10)
				}
				row(w, appt.ID, appt.Date, appt.Time, doctor, "#"+strconv.FormatInt(appt.PatientID, 10),
					appt.Status, actionList(appt.Status, user.Role))
			}
			return w.Flush()
		},
	}

	var req appointments.BookingRequest
	book := &cobra.Command{
		Use:   "book",
		Short: "Request an appointment (patients)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RolePatient)
			if err != nil {
				return err
			}
			appt, err := a.workflow.Book(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Appointment #%d requested for %s %s (%s).\n", appt.ID, appt.Date, appt.Time, appt.Status)
			return nil
		},
	}
	book.Flags().Int64Var(&req.DoctorID, "doctor", 0, "doctor id")
	book.Flags().StringVar(&req.Date, "date", "", "date, YYYY-MM-DD")
	book.Flags().StringVar(&req.Time, "time", "", "time, HH:MM or HH:MM:SS")
	book.Flags().StringVar(&req.Reason, "reason", "", "reason for the visit")

	setStatus := &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Set any status, bypassing the workflow (admins)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := c.session(cmd.Context(), users.RoleAdmin)
			if err != nil {
				return err
			}
			status := appointments.Status(strings.ToLower(strings.TrimSpace(args[1])))
			appt, err := a.workflow.SetStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Appointment #%d is now %s.\n", appt.ID, appt.Status)
			return nil
		},
	}

	cmd.AddCommand(list, book, setStatus)
	for _, action := range appointments.Actions {
		cmd.AddCommand(c.actionCmd(action))
	}
	return cmd
}

func (c *cli) actionCmd(action appointments.Action) *cobra.Command {
	return &cobra.Command{
		Use:   action.String() + " ID",
		Short: fmt.Sprintf("Move an appointment to %s", action.Target()),
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
			appt, err := a.workflow.Act(cmd.Context(), id, action)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Appointment #%d is now %s.\n", appt.ID, appt.Status)
			return nil
		},
	}
}

func actionList(status appointments.Status, role users.RoleType) string {
	actions := appointments.AllowedActions(status, role)
	if len(actions) == 0 {
		return "-"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}

func (c *cli) recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Medical records",
	}

	var patientID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "Your records, or one patient's with --patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, user, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			var found []records.MedicalRecord
			switch {
			case user.IsPatient():
				found, err = a.records.Mine(cmd.Context())
			case patientID > 0:
				found, err = a.records.ForPatient(cmd.Context(), patientID)
			default:
				return fmt.Errorf("--patient is required for %s accounts", user.Role)
			}
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(c.out, "No medical records.")
				return nil
			}
			c.recordList(found)
			return nil
		},
	}
	list.Flags().Int64Var(&patientID, "patient", 0, "patient id (doctors and admins)")

	var (
		draft         records.Draft
		appointmentID int64
		rx            []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Write a medical record (doctors)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RoleDoctor)
			if err != nil {
				return err
			}
			if appointmentID > 0 {
				draft.AppointmentID = utils.Ptr(appointmentID)
			}
			draft.Prescription = draft.Prescription[:0]
			for _, line := range rx {
				p, err := parsePrescription(line)
				if err != nil {
					return err
				}
				draft.Prescription = append(draft.Prescription, p)
			}
			rec, err := a.records.Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Medical record #%d added for patient #%d.\n", rec.ID, rec.PatientID)
			return nil
		},
	}
	add.Flags().Int64Var(&draft.PatientID, "patient", 0, "patient id")
	add.Flags().Int64Var(&appointmentID, "appointment", 0, "appointment id, if any")
	add.Flags().StringVar(&draft.Subject, "subject", "", "subject")
	add.Flags().StringVar(&draft.Content, "content", "", "notes")
	add.Flags().StringVar(&draft.Diagnosis, "diagnosis", "", "diagnosis")
	add.Flags().StringVar(&draft.Symptoms, "symptoms", "", "symptoms")
	add.Flags().StringVar(&draft.Treatment, "treatment", "", "treatment")
	add.Flags().StringArrayVar(&rx, "rx", nil, `prescription line "medication;dosage;frequency;refills" (repeatable)`)

	cmd.AddCommand(list, add)
	return cmd
}

// parsePrescription reads "medication;dosage;frequency;refills". Trailing
// parts may be left off.
func parsePrescription(line string) (records.Prescription, error) {
	parts := strings.Split(line, ";")
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	p := records.Prescription{
		Medication: strings.TrimSpace(parts[0]),
		Dosage:     strings.TrimSpace(parts[1]),
		Frequency:  strings.TrimSpace(parts[2]),
	}
	if refills := strings.TrimSpace(parts[3]); refills != "" {
		n, err := strconv.Atoi(refills)
		if err != nil {
			return records.Prescription{}, fmt.Errorf("invalid refills %q in --rx %q", refills, line)
		}
		p.Refills = n
	}
	return p, nil
}

func (c *cli) recordList(list []records.MedicalRecord) {
	for i, r := range list {
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		fmt.Fprintf(c.out, "#%d %s (%s)\n", r.ID, r.Subject, r.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(c.out, "  %s\n", r.Content)
		if r.Diagnosis != "" {
			fmt.Fprintf(c.out, "  diagnosis: %s\n", r.Diagnosis)
		}
		if r.Symptoms != "" {
			fmt.Fprintf(c.out, "  symptoms:  %s\n", r.Symptoms)
		}
		if r.Treatment != "" {
			fmt.Fprintf(c.out, "  treatment: %s\n", r.Treatment)
		}
		for _, p := range r.Prescription {
			fmt.Fprintf(c.out, "  rx: %s %s %s, %d refills\n", p.Medication, p.Dosage, p.Frequency, p.Refills)
		}
	}
}
