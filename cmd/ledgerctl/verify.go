package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
)

func newVerifyCommand(root *rootOptions) *cobra.Command {
	var sellerID string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recalcula saldos desde la cadena de movimientos y reporta diferencias",
		Long: `Para cada BatchLocation del vendedor reconstruye el saldo a partir de sus
movimientos y lo compara con la cantidad guardada. Sale con código 1 si
encuentra diferencias.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := root.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			repos := postgres.NewRepos(pool)
			v := inventory.NewVerifier(repos.Batches, repos.Locations, repos.Movements, root.log.Component("verify"))
			report, err := v.Verify(cmd.Context(), sellerID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vendedor %s: %d ubicaciones, %d movimientos\n", report.SellerID, report.BatchLocations, report.Movements)
			for _, m := range report.Mismatches {
				fmt.Fprintln(out, "  "+m.String())
			}
			if !report.OK() {
				return fmt.Errorf("%d diferencias en el libro", len(report.Mismatches))
			}
			fmt.Fprintln(out, "libro cuadrado")
			return nil
		},
	}
	cmd.Flags().StringVar(&sellerID, "seller", "", "vendedor a verificar (requerido)")
	_ = cmd.MarkFlagRequired("seller")
	return cmd
}
