package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/product"
	"github.com/wichananm65/football-storefront/internal/server"
)

var (
	productsCategory int
	addQuantity      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web storefront",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List published products",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

var productCmd = &cobra.Command{
	Use:   "product <slug>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show your cart",
	Args:  cobra.NoArgs,
	RunE:  runCart,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line from your cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartUpdate,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty your cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var addCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Add a product to your cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and remember the credential",
	Args:  cobra.ExactArgs(2),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, env.cfg, logger)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()
	return srv.Listen()
}

func runCategories(cmd *cobra.Command, args []string) error {
	items, err := env.categories.List(ctxOf(cmd), env.tokens)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Categories"))
	for _, c := range items {
		fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("%4d", c.ID)), c.Title)
	}
	return nil
}

func runProducts(cmd *cobra.Command, args []string) error {
	products, err := env.products.Refresh(ctxOf(cmd), env.tokens)
	if err != nil {
		return fmt.Errorf("%s: %w", product.LoadFailedMessage, err)
	}
	if productsCategory != 0 {
		products = env.products.Catalog().Filter(productsCategory)
	}
	out := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(product.EmptyMessage))
		return nil
	}
	fmt.Fprintln(out, titleStyle.Render("Products"))
	for _, p := range products {
		fmt.Fprintf(out, "  %-24s %-32s %s\n", p.Slug, p.Name, money(p.Price))
	}
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	p, err := env.products.Get(ctxOf(cmd), env.tokens, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(p.Name))
	fmt.Fprintf(out, "  slug:     %s\n", p.Slug)
	fmt.Fprintf(out, "  price:    %s\n", money(p.Price))
	fmt.Fprintf(out, "  category: %d\n", p.Category)
	fmt.Fprintf(out, "  image:    %s\n", p.ImageURL())
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	return nil
}

func printCart(cmd *cobra.Command, s cart.State) {
	out := cmd.OutOrStdout()
	if len(s.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(cart.EmptyMessage))
		return
	}
	fmt.Fprintln(out, titleStyle.Render("Cart"))
	for _, it := range s.Items {
		fmt.Fprintf(out, "  %s %-32s %3d x %s = %s\n",
			mutedStyle.Render(fmt.Sprintf("#%d", it.ID)), it.Name, it.Quantity, money(it.Price), money(it.Total))
	}
	fmt.Fprintf(out, "  items: %d, total: %s\n", s.Count, money(s.Total))
}

func requireLogin() error {
	if _, ok := env.tokens.Get(); !ok {
		return errors.New(cart.LoginRequiredMessage)
	}
	return nil
}

func runCart(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	printCart(cmd, env.carts.Load(ctxOf(cmd), env.tokens))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	state, err := env.carts.Add(ctxOf(cmd), env.tokens, args[0], addQuantity)
	if err != nil {
		return errors.New(cart.Message(err, cart.AddFailedMessage))
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(cart.AddedMessage))
	printCart(cmd, state)
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	state, err := env.carts.Remove(ctxOf(cmd), env.tokens, id)
	if err != nil {
		return errors.New(cart.Message(err, cart.RemoveFailedMessage))
	}
	printCart(cmd, state)
	return nil
}

func runCartUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	state, err := env.carts.Update(ctxOf(cmd), env.tokens, id, qty)
	if err != nil {
		return errors.New(cart.Message(err, cart.UpdateFailedMessage))
	}
	printCart(cmd, state)
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	state, err := env.carts.Clear(ctxOf(cmd), env.tokens)
	if err != nil {
		return errors.New(cart.Message(err, cart.ClearFailedMessage))
	}
	printCart(cmd, state)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := env.auth.Login(ctxOf(cmd), env.tokens, args[0], args[1]); err != nil {
		return errors.New(auth.Message(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Logged in as "+args[0]))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	msg, err := env.auth.Logout(env.tokens)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
	return nil
}
