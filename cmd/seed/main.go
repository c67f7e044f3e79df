// seed genera un script SQL idempotente para poblar sucursales y stock a partir de un CSV
// exportado por el sistema de punto de venta (separador ';', codificación ISO-8859-1 por defecto).
//
// Columnas: store_id;store_name;store_location;product_id;product_name;category;quantity
// La primera fila es el encabezado.
//
// Uso: go run ./cmd/seed [-in inventario.csv] [-out seed_inventory.sql] [-encoding latin1|utf8]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type storeRow struct {
	id       int64
	name     string
	location string
}

type stockRow struct {
	productID int64
	storeID   int64
	name      string
	category  string
	quantity  int
}

type seedData struct {
	stores map[int64]storeRow
	stock  []stockRow
}

func main() {
	in := flag.String("in", "inventario.csv", "CSV de entrada")
	outPath := flag.String("out", "", "archivo SQL de salida (vacío = stdout)")
	encoding := flag.String("encoding", "latin1", "codificación del CSV: latin1 o utf8")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	data, err := parseCSV(f, strings.EqualFold(*encoding, "latin1"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	if err := writeSQL(out, data); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d sucursales, %d registros de stock\n", len(data.stores), len(data.stock))
}

func parseCSV(r io.Reader, latin1 bool) (*seedData, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 7
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	data := &seedData{stores: make(map[int64]storeRow)}
	seen := make(map[[2]int64]int)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		storeID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("línea %d: store_id inválido %q", line, rec[0])
		}
		productID, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("línea %d: product_id inválido %q", line, rec[3])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[6]))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("línea %d: quantity inválida %q", line, rec[6])
		}

		data.stores[storeID] = storeRow{
			id:       storeID,
			name:     strings.TrimSpace(rec[1]),
			location: strings.TrimSpace(rec[2]),
		}
		row := stockRow{
			productID: productID,
			storeID:   storeID,
			name:      strings.TrimSpace(rec[4]),
			category:  strings.TrimSpace(rec[5]),
			quantity:  qty,
		}
		// La última fila de una misma clave gana.
		key := [2]int64{productID, storeID}
		if i, ok := seen[key]; ok {
			data.stock[i] = row
			continue
		}
		seen[key] = len(data.stock)
		data.stock = append(data.stock, row)
	}
	return data, nil
}

func writeSQL(w io.Writer, data *seedData) error {
	var ids []int64
	for id := range data.stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	stock := make([]stockRow, len(data.stock))
	copy(stock, data.stock)
	sort.Slice(stock, func(i, j int) bool {
		if stock[i].storeID != stock[j].storeID {
			return stock[i].storeID < stock[j].storeID
		}
		return stock[i].productID < stock[j].productID
	})

	var b strings.Builder
	b.WriteString("-- Sucursales y stock generados desde CSV\n\n")

	if len(ids) > 0 {
		b.WriteString("-- 1. Sucursales\n")
		b.WriteString("INSERT INTO store (id, name, location) VALUES\n")
		for i, id := range ids {
			s := data.stores[id]
			fmt.Fprintf(&b, "  (%d, '%s', '%s')", s.id, escapeSQL(s.name), escapeSQL(s.location))
			b.WriteString(listSep(i, len(ids)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location;\n\n")
	}

	if len(stock) > 0 {
		b.WriteString("-- 2. Stock por sucursal\n")
		b.WriteString("INSERT INTO product (product_id, store_id, name, category, quantity, updated_at) VALUES\n")
		for i, p := range stock {
			fmt.Fprintf(&b, "  (%d, %d, '%s', '%s', %d, now())",
				p.productID, p.storeID, escapeSQL(p.name), escapeSQL(p.category), p.quantity)
			b.WriteString(listSep(i, len(stock)))
		}
		b.WriteString("ON CONFLICT (product_id, store_id) DO UPDATE SET name = EXCLUDED.name, ")
		b.WriteString("category = EXCLUDED.category, quantity = EXCLUDED.quantity, updated_at = now();\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func listSep(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
