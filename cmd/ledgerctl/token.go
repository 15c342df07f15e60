package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

func newTokenCommand(root *rootOptions) *cobra.Command {
	var id jwt.Identity
	var expMinutes int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de actor firmado con JWT_SECRET",
		Long: `Emite un Bearer token para integraciones internas (por ejemplo el componente
de reservas con --type SYSTEM) o para pruebas locales.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(entity.Actor{Type: id.ActorType, ID: id.UserID}).Valid() {
				return fmt.Errorf("actor inválido: type=%q id=%q", id.ActorType, id.UserID)
			}
			if expMinutes <= 0 {
				expMinutes = root.cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(root.cfg.JWT.Secret, root.cfg.JWT.Issuer, expMinutes, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&id.UserID, "user", "", "id del actor (requerido)")
	cmd.Flags().StringVar(&id.SellerID, "seller", "", "vendedor (requerido)")
	cmd.Flags().StringVar(&id.ActorType, "type", entity.ActorTypeEmployee, "EMPLOYEE | SELLER | SYSTEM | CUSTOMER")
	cmd.Flags().StringVar(&id.Name, "name", "", "nombre visible del actor")
	cmd.Flags().IntVar(&expMinutes, "exp", 0, "minutos de validez (por defecto JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("seller")
	return cmd
}
