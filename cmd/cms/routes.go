package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/controllers"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			router := cms.NewRouter(nil)
			controllers.Register(router, controllers.Deps{})
			return printRoutes(cmd.OutOrStdout(), router)
		},
	}
}

func printRoutes(w io.Writer, router *cms.Router) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tACTION\tMETHOD\tACCESS\tCONTROLLER")
	for _, rt := range router.List() {
		action := rt.Action
		if action == "" {
			action = `""`
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rt.Name, action, rt.Method, rt.AccessLevel, rt.Target.Controller())
	}
	return tw.Flush()
}
