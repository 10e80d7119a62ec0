package services

import "fmt"

// alertSubject builds the subject line for a maintenance alert email.
func alertSubject(d *Decision) string {
	return fmt.Sprintf("Maintenance Due: %s - %s", d.Vehicle.Name, d.TaskName)
}

// alertBody renders the plain-text body for a maintenance alert.
func alertBody(d *Decision) string {
	return fmt.Sprintf(
		"Maintenance Alert\n\n"+
			"Vehicle:   %s\n"+
			"Task:      %s\n"+
			"Current:   %.1f %s\n"+
			"Due at:    %.1f %s\n"+
			"Remaining: %.1f %s\n\n"+
			"This task is within %.0f %s of its service interval. "+
			"Schedule service soon.\n",
		d.Vehicle.Name,
		d.TaskName,
		d.Current, d.Unit,
		d.Due, d.Unit,
		d.Remaining, d.Unit,
		d.Threshold, d.Unit,
	)
}

// alertNotificationMessage renders the shorter in-app notification text.
func alertNotificationMessage(d *Decision) string {
	return fmt.Sprintf("%s is due for %s in %.1f %s (current: %.1f %s)",
		d.Vehicle.Name, d.TaskName, d.Remaining, d.Unit, d.Current, d.Unit)
}
