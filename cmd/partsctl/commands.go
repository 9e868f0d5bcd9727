package main

import (
	"github.com/spf13/cobra"

	"furniture/internal/catalog/models"
	id "furniture/pkg/domain"
)

func (a *app) productCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Create products and manage their parts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.catalog.Products.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, product)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add-part PRODUCT_ID PART_NAME",
		Short: "Attach an existing part to a product",
		Long: `Attach an existing part to a product. The part gets a new id for this
product ending with the product id's last two characters. Adding a part that
is already attached prints its existing id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			part, err := a.catalog.Products.AddPart(cmd.Context(), productID, args[1])
			if err != nil {
				return err
			}
			view, _ := part.ViewFor(productID)
			return a.print(cmd, view)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get-part PRODUCT_ID PART_NAME",
		Short: "Show a part as seen from a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			view, err := a.catalog.Products.GetPart(cmd.Context(), productID, args[1])
			if err != nil {
				return err
			}
			return a.print(cmd, view)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "parts PRODUCT_ID",
		Short: "List the parts attached to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := id.ParseProductID(args[0])
			if err != nil {
				return err
			}
			views, err := a.catalog.Products.ListParts(cmd.Context(), productID)
			if err != nil {
				return err
			}
			return a.print(cmd, views)
		},
	})

	return cmd
}

func (a *app) partCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "part",
		Short: "Create and inspect parts",
	}

	var products []string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a part, optionally attached to products",
		Long: `Create a part. Without --product the part is disowned and its id starts
with the disownment code. Each --product attaches the part to that product
under its own id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productIDs := make([]id.ProductID, 0, len(products))
			for _, raw := range products {
				productID, err := id.ParseProductID(raw)
				if err != nil {
					return err
				}
				productIDs = append(productIDs, productID)
			}
			part, err := a.catalog.Parts.Create(cmd.Context(), args[0], productIDs...)
			if err != nil {
				return err
			}
			return a.print(cmd, partOutput(part))
		},
	}
	create.Flags().StringArrayVar(&products, "product", nil, "product id to attach the part to (repeatable)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Show a part and every id assigned to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := a.catalog.Parts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, partOutput(part))
		},
	})

	return cmd
}

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the part id ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := a.catalog.Parts.Rules()
			return a.print(cmd, map[string]any{
				"disownment_code": rules.DisownmentCode,
				"length":          rules.Length,
				"suffix_length":   rules.SuffixLength,
				"max_attempts":    rules.MaxAttempts,
				"storage":         a.catalog.Strategy(),
			})
		},
	}
}

// partView is a stored part with its primary id.
type partView struct {
	ID id.PartID `json:"id"`
	*models.Part
}

func partOutput(part *models.Part) partView {
	return partView{ID: part.ID(), Part: part}
}
