package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/internal/store"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
)

func writeDataset(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestLoaderRun(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, map[string]string{
		dataset.ProductsFile: "product_id,name,category,subcategory,price,cost,stock_quantity,supplier,created_date\n" +
			"1,Desk Lamp,Home,Lighting,45.00,27.00,15,Brightline,2020-05-01\n" +
			"2,Broken Row,Home,Lighting,not-a-price,27.00,15,Brightline,2020-05-01\n",
		dataset.CustomersFile: "customer_id,first_name,last_name,email,phone,address,city,state,zip,country,registration_date\n" +
			"10,Ana,Reyes,ana.reyes@example.com,555-0110,12 Cedar Ln,Austin,TX,78701,USA,2021-01-05\n",
		dataset.OrdersFile: "order_id,customer_id,order_date,status,payment_method,shipping_address,shipping_city,shipping_state,shipping_zip,shipping_country,total_amount\n" +
			"100,10,2022-06-01,Completed,PayPal,12 Cedar Ln,Austin,TX,78701,USA,90.00\n",
		dataset.OrderItemsFile: "order_item_id,order_id,product_id,quantity,unit_price,discount,line_total\n" +
			"1000,100,1,2,45.00,0,90.00\n",
		dataset.ReviewsFile: "review_id,product_id,customer_id,rating,review_text,review_date\n" +
			"5000,1,10,5,Great light.,2022-07-10\n",
	})

	loader := NewLoader(dir, quietLogger(), nil)
	s, summary, err := loader.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.True(t, s.Frozen())
	assert.Equal(t, 1, summary.Accepted[store.EntityProducts])
	assert.Equal(t, 1, summary.Rejected[store.EntityProducts])
	assert.Equal(t, 1, summary.Accepted[store.EntityReviews])
	assert.Equal(t, 0, summary.Rejected[store.EntityOrders])

	require.NotNil(t, summary.Report)
	assert.True(t, summary.Report.Passed())
	assert.Empty(t, summary.Report.Anomalies)
}

func TestLoaderRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	// No products.csv at all.
	loader := NewLoader(dir, quietLogger(), nil)
	s, summary, err := loader.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Nil(t, summary)
}

func TestLoaderRunReportsAnomalies(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, map[string]string{
		dataset.ProductsFile: "product_id,name,category,subcategory,price,cost,stock_quantity,supplier,created_date\n" +
			"1,Desk Lamp,Home,Lighting,45.00,27.00,15,Brightline,2020-05-01\n",
		dataset.CustomersFile: "customer_id,first_name,last_name,email,phone,address,city,state,zip,country,registration_date\n" +
			"10,Ana,Reyes,ana.reyes@example.com,,12 Cedar Ln,Austin,TX,78701,USA,2021-01-05\n",
		dataset.OrdersFile: "order_id,customer_id,order_date,status,payment_method,shipping_address,shipping_city,shipping_state,shipping_zip,shipping_country,total_amount\n" +
			"100,10,2020-06-01,Completed,PayPal,12 Cedar Ln,Austin,TX,78701,USA,90.00\n",
		dataset.OrderItemsFile: "order_item_id,order_id,product_id,quantity,unit_price,discount,line_total\n",
		dataset.ReviewsFile:    "review_id,product_id,customer_id,rating,review_text,review_date\n",
	})

	loader := NewLoader(dir, quietLogger(), nil)
	_, summary, err := loader.Run(context.Background())
	require.NoError(t, err)

	// Order predates registration: loaded, but flagged.
	require.NotNil(t, summary.Report)
	assert.False(t, summary.Report.Passed())
	require.Len(t, summary.Report.Anomalies, 1)
	assert.Equal(t, "order_before_registration", summary.Report.Anomalies[0].Rule)
}
