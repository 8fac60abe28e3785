package branch

// BuiltIn returns the five branches of JULFERIIN LIMITED and their business areas.
func BuiltIn() []Branch {
	return []Branch{
		{
			ID:    0,
			Name:  "JULFERIIN LIMITED (Ramo 0)",
			Areas: []string{"Medicamentos", "Gas", "Vestuário", "Cosméticos", "Segurança"},
		},
		{
			ID:    1,
			Name:  "JULFERIIN LIMITED 1 (Ramo 1)",
			Areas: []string{"Limpeza", "Venda de Acessórios Eletrónicos", "Reparação de Viaturas", "Manutenção Geral", "Organização de Eventos"},
		},
		{
			ID:    2,
			Name:  "JULFERIIN LIMITED 2 (Ramo 2)",
			Areas: []string{"Aluguer de Viaturas", "Importação/Exportação", "Peças de Carro e Motas", "Transporte", "Aluguer de Contentores e Casas"},
		},
		{
			ID:    3,
			Name:  "JULFERIIN LIMITED 3 (Ramo 3)",
			Areas: []string{"Catering", "Venda de Refrigerantes", "Alimentação", "Talho"},
		},
		{
			ID:    4,
			Name:  "JULFERIIN LIMITED 4 (Ramo 4)",
			Areas: []string{"Agricultura", "Pesca", "Turismo", "Carvão Vegetal", "Agropecuária", "Jardinagem"},
		},
	}
}
