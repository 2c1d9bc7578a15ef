package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"

	"vendebot/internal/domain"
)

// PromptContext is the freshly composed context block sent as the system
// instruction on every reasoning call.
type PromptContext struct {
	Business   domain.Business
	Catalog    []domain.Product
	Promotions []domain.Promotion
	Customer   domain.Customer
	Order      domain.Order
	Stage      domain.Stage
	Today      string // YYYY-MM-DD in the business time zone
}

// System renders the full system prompt, catalog and order state included.
func (pc PromptContext) System() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eres el asistente virtual de *%s*, una %s. Atiende clientes por WhatsApp de forma natural y amigable.\n\n", pc.Business.Name, pc.Business.Kind)

	b.WriteString("CATÁLOGO:\n")
	for _, p := range pc.Catalog {
		emoji := p.Emoji
		if emoji == "" {
			emoji = "•"
		}
		fmt.Fprintf(&b, "- [%d] %s *%s*: $%s — %s (stock: %d)\n", p.Ref, emoji, p.Name, dollars(p.PriceCents), p.Description, p.Stock)
	}

	if promos := pc.activePromotions(); len(promos) > 0 {
		b.WriteString("\nPROMOCIONES VIGENTES:\n")
		for _, p := range promos {
			fmt.Fprintf(&b, "- %s: %s\n", p.Title, p.Description)
		}
	}

	b.WriteString("\nCLIENTE:\n")
	if pc.Customer.Name != "" {
		fmt.Fprintf(&b, "- Nombre: %s\n", pc.Customer.Name)
	}
	fmt.Fprintf(&b, "- Pedidos anteriores: %d\n", pc.Customer.OrderCount)
	fmt.Fprintf(&b, "- Puntos acumulados: %d\n", pc.Customer.PointsBalance)
	if pc.Customer.ReferralCode != "" {
		fmt.Fprintf(&b, "- Código de referido: %s\n", pc.Customer.ReferralCode)
	}

	b.WriteString("\nREGLAS:\n")
	b.WriteString("1. Habla siempre en español. Usa emojis con moderación.\n")
	b.WriteString("2. Cuando el cliente quiera ver productos escribe al final: ENVIAR_IMAGENES: [ids]\n")
	b.WriteString("3. Cuando confirme el pedido, pregunta si quiere domicilio o retiro en tienda, y si paga por transferencia o contra entrega.\n")
	fmt.Fprintf(&b, "4. Cuando el total esté listo, informa el precio EXACTO y los datos de pago: %s | Cuenta: %s | Titular: %s\n", pc.Business.BankName, pc.Business.BankAccount, pc.Business.BankHolder)
	b.WriteString("5. Después del precio, pide el comprobante de pago.\n")
	b.WriteString("6. NUNCA inventes productos o precios fuera del catálogo.\n")

	state, _ := json.Marshal(pc.Order)
	fmt.Fprintf(&b, "\nESTADO ACTUAL: %s\nETAPA: %s\nFECHA: %s\n", state, pc.Stage, pc.Today)

	b.WriteString(`
Al final de tu respuesta escribe en líneas separadas:
ETAPA: [inquiring|quoting|confirming|delivery_setup|awaiting_payment|confirmed]
PEDIDO_JSON: {"descripcion":"","items":[{"id":1,"nombre":"","cantidad":1,"precio":0.0}],"subtotal":0.0,"total":0.0,"es_domicilio":false,"metodo_pago":"transferencia"}
ENVIAR_IMAGENES: []
MOSTRAR_PAGO: false
CUPON:
NOMBRE_CLIENTE:`)

	return b.String()
}

func (pc PromptContext) activePromotions() []domain.Promotion {
	var out []domain.Promotion
	for _, p := range pc.Promotions {
		if p.InWindow(pc.Today) {
			out = append(out, p)
		}
	}
	return out
}

func dollars(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
