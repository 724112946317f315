package timelog

import "fmt"

// BarData is the payload consumed by the chart front end.
type BarData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
	BorderColor     []string `json:"borderColor"`
	BorderWidth     int      `json:"borderWidth"`
}

type rgb struct{ r, g, b int }

var palette = []rgb{
	{255, 99, 132},
	{54, 162, 235},
	{255, 206, 86},
	{75, 192, 192},
	{153, 102, 255},
	{255, 159, 64},
}

// ActivityChart plots every activity task of the category.
func ActivityChart(c *Category) BarData {
	return barData(c.Title(), c.ActivitiesNames(), c.ActivitiesTimes())
}

// TaskChart plots the tasks attached directly to the category.
func TaskChart(c *Category) BarData {
	return barData(c.Title(), c.TasksNames(), c.TasksTimes())
}

// CategoryChart plots activity tasks followed by direct tasks.
func CategoryChart(c *Category) BarData {
	labels := append(c.ActivitiesNames(), c.TasksNames()...)
	data := append(c.ActivitiesTimes(), c.TasksTimes()...)
	return barData(c.Title(), labels, data)
}

// CategoriesChart plots one bar per category total.
func CategoriesChart(categories []*Category) BarData {
	labels := make([]string, 0, len(categories))
	data := make([]int, 0, len(categories))
	for _, c := range categories {
		labels = append(labels, c.Title())
		data = append(data, c.TotalElapsed())
	}
	return barData("Categories", labels, data)
}

func barData(label string, labels []string, data []int) BarData {
	if labels == nil {
		labels = []string{}
	}
	if data == nil {
		data = []int{}
	}
	background := make([]string, len(data))
	border := make([]string, len(data))
	for i := range data {
		c := palette[i%len(palette)]
		background[i] = fmt.Sprintf("rgba(%d, %d, %d, 0.2)", c.r, c.g, c.b)
		border[i] = fmt.Sprintf("rgba(%d, %d, %d, 1)", c.r, c.g, c.b)
	}
	return BarData{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           label,
			Data:            data,
			BackgroundColor: background,
			BorderColor:     border,
			BorderWidth:     1,
		}},
	}
}
