package synthetic

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
)

// WriteCSVs serializes the dataset into the five load files under dir,
// creating the directory if needed.
func WriteCSVs(dir string, d *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	if err := writeFile(dir, dataset.ProductsFile,
		[]string{"product_id", "name", "category", "subcategory", "price", "cost", "stock_quantity", "supplier", "created_date"},
		len(d.Products), func(i int) []string {
			p := d.Products[i]
			return []string{
				strconv.FormatInt(p.ID, 10), p.Name, p.Category, p.Subcategory,
				formatMoney(p.Price), formatMoney(p.Cost), strconv.Itoa(p.StockQuantity),
				p.Supplier, p.CreatedDate.Format(dataset.DateLayout),
			}
		}); err != nil {
		return err
	}

	if err := writeFile(dir, dataset.CustomersFile,
		[]string{"customer_id", "first_name", "last_name", "email", "phone", "address", "city", "state", "zip", "country", "registration_date"},
		len(d.Customers), func(i int) []string {
			c := d.Customers[i]
			phone := ""
			if c.Phone != nil {
				phone = *c.Phone
			}
			return []string{
				strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, c.Email, phone,
				c.Address, c.City, c.State, c.Zip, c.Country,
				c.RegistrationDate.Format(dataset.DateLayout),
			}
		}); err != nil {
		return err
	}

	if err := writeFile(dir, dataset.OrdersFile,
		[]string{"order_id", "customer_id", "order_date", "status", "payment_method", "shipping_address", "shipping_city", "shipping_state", "shipping_zip", "shipping_country", "total_amount"},
		len(d.Orders), func(i int) []string {
			o := d.Orders[i]
			return []string{
				strconv.FormatInt(o.ID, 10), strconv.FormatInt(o.CustomerID, 10),
				o.OrderDate.Format(dataset.DateLayout), o.Status.String(), o.PaymentMethod.String(),
				o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingZip, o.ShippingCountry,
				formatMoney(o.TotalAmount),
			}
		}); err != nil {
		return err
	}

	if err := writeFile(dir, dataset.OrderItemsFile,
		[]string{"order_item_id", "order_id", "product_id", "quantity", "unit_price", "discount", "line_total"},
		len(d.OrderItems), func(i int) []string {
			it := d.OrderItems[i]
			return []string{
				strconv.FormatInt(it.ID, 10), strconv.FormatInt(it.OrderID, 10),
				strconv.FormatInt(it.ProductID, 10), strconv.Itoa(it.Quantity),
				formatMoney(it.UnitPrice), formatMoney(it.Discount), formatMoney(it.LineTotal),
			}
		}); err != nil {
		return err
	}

	return writeFile(dir, dataset.ReviewsFile,
		[]string{"review_id", "product_id", "customer_id", "rating", "review_text", "review_date"},
		len(d.Reviews), func(i int) []string {
			rv := d.Reviews[i]
			text := ""
			if rv.ReviewText != nil {
				text = *rv.ReviewText
			}
			return []string{
				strconv.FormatInt(rv.ID, 10), strconv.FormatInt(rv.ProductID, 10),
				strconv.FormatInt(rv.CustomerID, 10), strconv.Itoa(rv.Rating),
				text, rv.ReviewDate.Format(dataset.DateLayout),
			}
		})
}

func writeFile(dir, name string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("write %s row: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return f.Close()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
