// Package importer carga órdenes de compra y entregas desde planillas. Cada fila se confirma en
// su propia transacción; una fila con error se informa y no detiene el resto.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/schedule"
	"github.com/jhoicas/almacen-api/pkg/logger"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// Modos de importación.
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

// Área usada en modo lenient cuando la fila no la informa.
const defaultArea = "PEDIDO ANTERIOR"

// Options parámetros de la importación.
type Options struct {
	Mode              string
	SentinelPrice     decimal.Decimal
	DefaultSupplier   string
	DefaultOrderStart time.Time
}

// Importer importación masiva de órdenes de compra y entregas.
type Importer struct {
	tx       ports.TxRunner
	engine   *stock.Engine
	recorder *audit.Recorder
	log      *logger.Logger
	now      func() time.Time
	opts     Options
}

// New construye el importador. Un modo vacío equivale a strict.
func New(tx ports.TxRunner, engine *stock.Engine, recorder *audit.Recorder, log *logger.Logger, now func() time.Time, opts Options) *Importer {
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if opts.DefaultSupplier == "" {
		opts.DefaultSupplier = "DESCONOCIDO"
	}
	if opts.DefaultOrderStart.IsZero() {
		opts.DefaultOrderStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Importer{tx: tx, engine: engine, recorder: recorder, log: log.Component("importer"), now: now, opts: opts}
}

// WithMode copia del importador con otro modo; un modo vacío conserva el actual.
func (im *Importer) WithMode(mode string) (*Importer, error) {
	switch mode {
	case "":
		return im, nil
	case ModeStrict, ModeLenient:
		cp := *im
		cp.opts.Mode = mode
		return &cp, nil
	default:
		return nil, fmt.Errorf("modo de importación %q inválido: %w", mode, domain.ErrInvalidInput)
	}
}

// Mode modo vigente.
func (im *Importer) Mode() string { return im.opts.Mode }

func (im *Importer) lenient() bool { return im.opts.Mode == ModeLenient }

// rowError error de negocio de una fila; se informa sin detener la importación.
type rowError struct{ msg string }

func (e *rowError) Error() string { return e.msg }

func failRow(format string, args ...any) error { return &rowError{msg: fmt.Sprintf(format, args...)} }

// run ejecuta cada fila en su transacción y acumula errores y advertencias.
func (im *Importer) run(ctx context.Context, rows []int, fn func(ctx context.Context, r ports.Repos, i int, warn func(string)) error) (*dto.ImportResult, error) {
	res := &dto.ImportResult{Mode: im.opts.Mode, Errors: []dto.RowError{}, Warnings: []dto.RowError{}}
	for i, rowNum := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var warnings []string
		err := im.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
			warnings = warnings[:0]
			return fn(ctx, r, i, func(msg string) { warnings = append(warnings, msg) })
		})
		if err != nil {
			var re *rowError
			msg := err.Error()
			if !errors.As(err, &re) {
				msg = "error inesperado: " + msg
			}
			im.log.Warn().Int("row", rowNum).Str("reason", msg).Msg("fila omitida")
			res.Errors = append(res.Errors, dto.RowError{Row: rowNum, Message: msg})
			continue
		}
		for _, w := range warnings {
			im.log.Warn().Int("row", rowNum).Str("reason", w).Msg("fila importada con advertencia")
			res.Warnings = append(res.Warnings, dto.RowError{Row: rowNum, Message: w})
		}
		res.Imported++
	}
	im.log.Info().Str("mode", res.Mode).Int("imported", res.Imported).Int("errors", len(res.Errors)).Msg("importación finalizada")
	return res, nil
}

// ─── Órdenes de compra ───────────────────────────────────────────────────────

// ImportOrders resuelve o crea rubro, bien y OC de cada fila y suma la cantidad al renglón
// (OC, bien, número de renglón) si ya existe.
func (im *Importer) ImportOrders(ctx context.Context, rows []dto.OrderImportRow) (*dto.ImportResult, error) {
	nums := make([]int, len(rows))
	for i, r := range rows {
		nums[i] = r.Row
	}
	return im.run(ctx, nums, func(ctx context.Context, r ports.Repos, i int, warn func(string)) error {
		return im.orderRow(ctx, r, rows[i], warn)
	})
}

func (im *Importer) orderRow(ctx context.Context, r ports.Repos, row dto.OrderImportRow, warn func(string)) error {
	categoryName := textnorm.Upper(row.Category)
	goodName := textnorm.Upper(row.GoodName)
	number := textnorm.Upper(row.OrderNumber)
	switch {
	case categoryName == "":
		return failRow("falta el rubro")
	case goodName == "":
		return failRow("falta el bien")
	case number == "":
		return failRow("falta la orden de compra")
	}
	qty, err := parseQuantity(row.Quantity)
	if err != nil || !entity.ValidQuantity(qty) {
		return failRow("cantidad comprada inválida %q", row.Quantity)
	}
	price, err := parsePrice(row.UnitPrice)
	if err != nil || price.IsNegative() {
		return failRow("precio unitario inválido %q", row.UnitPrice)
	}

	var events []entity.MutationEvent
	category, err := r.Categories.GetByName(ctx, categoryName)
	if err != nil {
		return err
	}
	if category == nil {
		category = &entity.Category{ID: uuid.New().String(), Name: categoryName, CreatedAt: im.now(), UpdatedAt: im.now()}
		if err := r.Categories.Create(ctx, category); err != nil {
			return err
		}
		events = append(events, audit.Created(category))
	}

	good, ev, err := im.resolveGood(ctx, r, row, goodName, category.ID)
	if err != nil {
		return err
	}
	events = append(events, ev...)

	order, err := r.Orders.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if order == nil {
		categoryID := category.ID
		order = &entity.PurchaseOrder{
			ID:         uuid.New().String(),
			Number:     number,
			StartDate:  im.opts.DefaultOrderStart,
			Supplier:   im.opts.DefaultSupplier,
			CategoryID: &categoryID,
			CreatedAt:  im.now(),
			UpdatedAt:  im.now(),
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		events = append(events, audit.Created(order))
		warn(fmt.Sprintf("OC %s creada con proveedor %s e inicio %s", number, order.Supplier, order.StartDate.Format(dto.DateLayout)))
	}

	lineNumber := lineNumberOf(row.LineReference)
	existing, err := r.OrderLines.ListByOrderAndGood(ctx, order.ID, good.ID)
	if err != nil {
		return err
	}
	for _, l := range existing {
		if l.LineNumber != lineNumber {
			continue
		}
		merged := *l
		merged.Quantity += qty
		merged.UnitPrice = price
		merged.TotalPrice = entity.LineTotal(merged.Quantity, price)
		if err := r.OrderLines.Update(ctx, &merged); err != nil {
			return err
		}
		events = append(events, audit.Updated(l, &merged))
		return im.recorder.RecordAll(ctx, r.Audit, nil, events)
	}
	line := &entity.PurchaseOrderLine{
		ID:              uuid.New().String(),
		PurchaseOrderID: order.ID,
		GoodID:          good.ID,
		GoodName:        good.Name,
		Quantity:        qty,
		UnitPrice:       price,
		TotalPrice:      entity.LineTotal(qty, price),
		LineNumber:      lineNumber,
	}
	if err := r.OrderLines.Create(ctx, line); err != nil {
		return err
	}
	events = append(events, audit.Created(line))
	return im.recorder.RecordAll(ctx, r.Audit, nil, events)
}

// resolveGood busca el bien por nombre en el rubro; un bien homónimo sin rubro se adopta.
func (im *Importer) resolveGood(ctx context.Context, r ports.Repos, row dto.OrderImportRow, name, categoryID string) (*entity.Good, []entity.MutationEvent, error) {
	good, err := r.Goods.GetByNameInCategory(ctx, name, &categoryID)
	if err != nil || good != nil {
		return good, nil, err
	}
	orphan, err := r.Goods.GetByNameInCategory(ctx, name, nil)
	if err != nil {
		return nil, nil, err
	}
	if orphan != nil {
		adopted := *orphan
		adopted.CategoryID = &categoryID
		adopted.UpdatedAt = im.now()
		if err := r.Goods.Update(ctx, &adopted); err != nil {
			return nil, nil, err
		}
		return &adopted, []entity.MutationEvent{audit.Updated(orphan, &adopted)}, nil
	}
	good = &entity.Good{
		ID:            uuid.New().String(),
		Name:          name,
		CategoryID:    &categoryID,
		CatalogCode:   textnorm.Upper(row.CatalogCode),
		LineReference: textnorm.Upper(row.LineReference),
		CreatedAt:     im.now(),
		UpdatedAt:     im.now(),
	}
	if err := r.Goods.Create(ctx, good); err != nil {
		return nil, nil, err
	}
	return good, []entity.MutationEvent{audit.Created(good)}, nil
}

// ─── Entregas ────────────────────────────────────────────────────────────────

// ImportDeliveries agrupa las filas en un remito por (área, fecha). En modo strict cada fila
// pasa por la misma validación de stock que una carga manual; en modo lenient no se controla
// el stock y se usa el precio centinela cuando la OC no tiene renglón para el bien.
func (im *Importer) ImportDeliveries(ctx context.Context, rows []dto.DeliveryImportRow) (*dto.ImportResult, error) {
	nums := make([]int, len(rows))
	for i, r := range rows {
		nums[i] = r.Row
	}
	return im.run(ctx, nums, func(ctx context.Context, r ports.Repos, i int, warn func(string)) error {
		return im.deliveryRow(ctx, r, rows[i], warn)
	})
}

func (im *Importer) deliveryRow(ctx context.Context, r ports.Repos, row dto.DeliveryImportRow, warn func(string)) error {
	area := textnorm.Upper(row.AreaOrPerson)
	if area == "" {
		if !im.lenient() {
			return failRow("falta el área o persona")
		}
		area = defaultArea
		warn("sin área o persona; se usa " + defaultArea)
	}
	day, err := parseDate(row.DeliveryDate)
	if err != nil {
		if !im.lenient() {
			return failRow("fecha de entrega inválida %q", row.DeliveryDate)
		}
		day = schedule.Day(im.now())
		warn(fmt.Sprintf("fecha de entrega inválida %q; se usa %s", row.DeliveryDate, day.Format(dto.DateLayout)))
	}
	qty, err := parseQuantity(row.Quantity)
	if err != nil || !entity.ValidQuantity(qty) {
		if !im.lenient() {
			return failRow("cantidad entregada inválida %q", row.Quantity)
		}
		qty = 1
		warn(fmt.Sprintf("cantidad entregada inválida %q; se usa 1", row.Quantity))
	}

	number := textnorm.Upper(row.OrderNumber)
	order, err := r.Orders.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if order == nil {
		return failRow("OC %q no encontrada", number)
	}
	goodName := textnorm.Upper(row.GoodName)
	good, err := findGood(ctx, r, goodName)
	if err != nil {
		return err
	}
	if good == nil {
		return failRow("bien %q no encontrado", goodName)
	}

	if err := r.Stock.LockOrderGood(ctx, order.ID, good.ID); err != nil {
		return err
	}
	lineNumber := lineNumberOf(row.LineReference)
	price, found, err := im.engine.ResolveUnitPrice(ctx, r, order.ID, good.ID, &lineNumber)
	if err != nil {
		return err
	}
	if !found {
		if !im.lenient() {
			return failRow("la OC %s no tiene renglón para %s", number, goodName)
		}
		price = im.opts.SentinelPrice
		warn(fmt.Sprintf("sin precio en OC %s para %s; se usa %s", number, goodName, price.StringFixed(2)))
	}

	available, err := im.engine.AvailableForOrder(ctx, r, order.ID, good.ID)
	if err != nil {
		return err
	}
	if qty > available {
		if !im.lenient() {
			return failRow("La cantidad (%d) excede el stock disponible (%d) para %s", qty, available, goodName)
		}
		warn(fmt.Sprintf("la cantidad (%d) excede el disponible (%d) para %s", qty, available, goodName))
	}

	var events []entity.MutationEvent
	delivery, err := r.Deliveries.FindByAreaAndDay(ctx, area, day)
	if err != nil {
		return err
	}
	if delivery == nil {
		orderID := order.ID
		delivery = &entity.Delivery{
			ID:              uuid.New().String(),
			Timestamp:       day,
			AreaOrPerson:    area,
			Notes:           "IMPORTACIÓN MASIVA",
			PurchaseOrderID: &orderID,
		}
		if err := r.Deliveries.Create(ctx, delivery); err != nil {
			return err
		}
		events = append(events, audit.Created(delivery))
	}
	orderID := order.ID
	line := &entity.DeliveryLine{
		ID:              uuid.New().String(),
		DeliveryID:      delivery.ID,
		PurchaseOrderID: &orderID,
		GoodID:          good.ID,
		GoodName:        good.Name,
		Quantity:        qty,
		UnitPrice:       price,
		TotalPrice:      entity.LineTotal(qty, price),
	}
	if err := r.DeliveryLines.Create(ctx, line); err != nil {
		return err
	}
	events = append(events, audit.Created(line))
	return im.recorder.RecordAll(ctx, r.Audit, nil, events)
}

// findGood busca un bien por nombre exacto en cualquier rubro.
func findGood(ctx context.Context, r ports.Repos, name string) (*entity.Good, error) {
	if name == "" {
		return nil, nil
	}
	goods, _, err := r.Goods.List(ctx, repository.GoodFilter{Search: name})
	if err != nil {
		return nil, err
	}
	for _, g := range goods {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

// ─── Parseo ──────────────────────────────────────────────────────────────────

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06", "2006-01-02 15:04:05", time.RFC3339}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return schedule.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}

// parseQuantity acepta enteros y valores como "12.0" que exportan las planillas.
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) || d.Abs().GreaterThan(decimal.NewFromInt(entity.MaxQuantity)) {
		return 0, fmt.Errorf("cantidad inválida %q", s)
	}
	return int(d.IntPart()), nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// lineNumberOf número de renglón de la planilla; 1 si no es numérico.
func lineNumberOf(ref string) int {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
