package router

import (
	handlers "github.com/metrico/dvgrouper/handler"
)

func APIRoutes(h *handlers.Handler) []*Route {
	return []*Route{
		{Path: "/health", Methods: []string{"GET"}, Handler: h.Health},
		{Path: "/datasets", Methods: []string{"GET"}, Handler: h.Datasets},
		{Path: "/datasets/{name}", Methods: []string{"GET"}, Handler: h.Dataset},
		{Path: "/summary", Methods: []string{"GET"}, Handler: h.Summary},
	}
}
