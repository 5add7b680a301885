package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func formatLocation(l *entities.Location) string {
	coords := fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
	if l.Address == "" {
		return coords
	}
	return fmt.Sprintf("%s (%s)", l.Address, coords)
}

func printUser(w io.Writer, u *entities.User) {
	fmt.Fprintf(w, "%s <%s> (id %s)\n", u.Username, u.Email, u.ID)
}

func printPrediction(w io.Writer, p *entities.Prediction) {
	id := p.ID
	if !p.Persisted() {
		id = "not saved"
	}
	fmt.Fprintf(w, "Prediction %s\n", id)
	fmt.Fprintf(w, "  Class:      %s\n", p.PredictedClass)
	fmt.Fprintf(w, "  Confidence: %s\n", p.ConfidenceLabel())
	if p.UrgencyLevel != "" {
		fmt.Fprintf(w, "  Urgency:    %s\n", p.UrgencyLevel)
	}
	if p.RequiresHospital != nil {
		fmt.Fprintf(w, "  Hospital:   %s\n", yesNo(*p.RequiresHospital))
	}
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Taken:      %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(p.Recommendations) > 0 {
		fmt.Fprintln(w, "  Recommendations:")
		for _, r := range p.Recommendations {
			fmt.Fprintf(w, "    - %s\n", r)
		}
	}
}

func printHistory(w io.Writer, records []*entities.Prediction) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No predictions yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCLASS\tCONFIDENCE\tURGENCY")
	for _, p := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.PredictedClass, p.ConfidenceLabel(), valueOr(p.UrgencyLevel, "-"))
	}
	_ = tw.Flush()
}

func printHospitals(w io.Writer, hospitals []*entities.Hospital) {
	if len(hospitals) == 0 {
		fmt.Fprintln(w, "No hospitals found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISTANCE\tWAIT\tPHONE\tSPECIALTIES")
	for _, h := range hospitals {
		distance := "-"
		if h.DistanceMiles != nil {
			distance = fmt.Sprintf("%.1f mi", *h.DistanceMiles)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.ID, h.Name, distance, valueOr(h.WaitTime, "-"), valueOr(h.Phone, "-"), strings.Join(h.Specialties, ", "))
	}
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
