package catalog

var defaultBarbers = []Barber{
	{
		ID:         "1",
		Name:       "Marcus Johnson",
		Specialty:  "Classic Cuts & Fades",
		Rating:     4.9,
		Image:      "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400",
		Experience: "8 years",
	},
	{
		ID:         "2",
		Name:       "David Chen",
		Specialty:  "Modern Styles & Beard",
		Rating:     4.8,
		Image:      "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=400",
		Experience: "6 years",
	},
	{
		ID:         "3",
		Name:       "Alex Rodriguez",
		Specialty:  "Hair Design & Color",
		Rating:     4.7,
		Image:      "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?w=400",
		Experience: "10 years",
	},
	{
		ID:         "4",
		Name:       "James Wilson",
		Specialty:  "Traditional Barbering",
		Rating:     4.9,
		Image:      "https://images.unsplash.com/photo-1519085360753-af0119f7cbe7?w=400",
		Experience: "12 years",
	},
}

var defaultServices = []Service{
	{ID: "1", Name: "Classic Haircut", Description: "Traditional haircut with scissors and clippers", DurationMinutes: 30, Price: 25},
	{ID: "2", Name: "Fade Haircut", Description: "Modern fade with precision blending", DurationMinutes: 45, Price: 35},
	{ID: "3", Name: "Beard Trim", Description: "Professional beard shaping and trimming", DurationMinutes: 20, Price: 15},
	{ID: "4", Name: "Hot Towel Shave", Description: "Luxurious straight razor shave with hot towel", DurationMinutes: 40, Price: 30},
	{ID: "5", Name: "Haircut & Beard Combo", Description: "Complete grooming package", DurationMinutes: 60, Price: 45},
	{ID: "6", Name: "Hair Design", Description: "Creative hair designs and patterns", DurationMinutes: 50, Price: 40},
	{ID: "7", Name: "Kids Haircut", Description: "Haircut for children under 12", DurationMinutes: 25, Price: 20},
	{ID: "8", Name: "Hair Color", Description: "Professional hair coloring service", DurationMinutes: 90, Price: 60},
}
