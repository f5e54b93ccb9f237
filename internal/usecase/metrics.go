package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ingredientsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "labelpal_recipe_ingredients_total",
		Help: "Total number of recipe ingredients processed by lookup status",
	},
	[]string{"status"},
)
