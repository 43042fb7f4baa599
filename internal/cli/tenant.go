package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/stargods/boxcode/internal/boxsrv/auth"
)

var (
	tenantUsername string
	tenantPassword string
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Provision, deprovision and log in tenants",
}

var tenantLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and print the tenant API key",
	RunE:  tenantLogin,
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new tenant seeded from the server's catalog",
	RunE:  tenantCreate,
}

var tenantDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deprovision a tenant and drop its namespace",
	RunE:  tenantDelete,
}

func init() {
	tenantCmd.PersistentFlags().StringVarP(&tenantUsername, "username", "u", "", "Tenant username")
	tenantCmd.PersistentFlags().StringVarP(&tenantPassword, "password", "p", "", "Tenant password")
	tenantCmd.MarkPersistentFlagRequired("username")
	tenantCmd.MarkPersistentFlagRequired("password")

	tenantCmd.AddCommand(tenantLoginCmd)
	tenantCmd.AddCommand(tenantCreateCmd)
	tenantCmd.AddCommand(tenantDeleteCmd)
}

func credentialHeader() http.Header {
	h := http.Header{}
	h.Set(auth.HeaderUsername, tenantUsername)
	h.Set(auth.HeaderPassword, tenantPassword)
	return h
}

func tenantLogin(cmd *cobra.Command, args []string) error {
	body, err := newClient().Do(http.MethodGet, "/api/users/", credentialHeader(), nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func tenantCreate(cmd *cobra.Command, args []string) error {
	body, err := newClient().Do(http.MethodPost, "/api/users/", credentialHeader(), nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func tenantDelete(cmd *cobra.Command, args []string) error {
	body, err := newClient().Do(http.MethodDelete, "/api/users/", credentialHeader(), nil)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}
