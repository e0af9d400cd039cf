package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/entregas/core/delivery"
)

const day = 24 * time.Hour

func sampleDeliveries(now time.Time) []delivery.Delivery {
	now = now.UTC()
	return []delivery.Delivery{
		{
			Owner:   "A001",
			Subject: "Matematica Discreta",
			Task:    "Ejercicios de Grafos",
			DueDate: now,
			FileURL: "#",
			Status:  delivery.StatusSubmitted,
		},
		{
			Owner:   "A002",
			Subject: "Programación Web",
			Task:    "Proyecto Final Dashboard",
			DueDate: now.Add(-day),
			FileURL: "#",
			Status:  delivery.StatusUnderReview,
		},
		{
			Owner:   "A001",
			Subject: "Base de Datos",
			Task:    "Modelo ER",
			DueDate: now.Add(-2 * day),
			FileURL: "#",
			Status:  delivery.StatusApproved,
		},
		{
			Owner:   "A003",
			Subject: "Ingeniería de Software",
			Task:    "Diagrama de Casos de Uso",
			DueDate: now.Add(day),
			FileURL: "#",
			Status:  delivery.StatusSubmitted,
		},
	}
}

// seed replaces all deliveries with sample ones.
func (cli *commandLine) seed(ctx context.Context) error {
	created, err := cli.dlvSvc.Seed(ctx, sampleDeliveries(time.Now()))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d deliveries created\n", len(created))
	return nil
}
