package config

// Default menu layouts, one per category. Icons are identifiers resolved by
// whatever front end draws the tree.

func defaultImageMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[size]]", Image: "image"},
		{Template: "[[color-depth]]", Image: "color"},
		{Template: "[[print]]", Image: "print"},
		{Template: "[[custom-print]]", Image: "print"},
		{Template: Separator},
		{Template: "[[file-size]]"},
	}
}

func defaultVideoMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[size]], [[duration]]", Image: "video"},
		{Template: "[[tracks]]"},
		{Template: Separator},
		{Template: "[[file-size]]"},
	}
}

func defaultAudioMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[duration]], [[bitrate]]", Image: "audio"},
		{Template: "[[audio]]"},
		{Template: Separator},
		{Template: "[[file-size]]"},
	}
}

func defaultPDFMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[pages]]", Image: "pdf"},
		{Template: "[[paper]]", Image: "page"},
		{Template: "[[title]]"},
		{Template: "[[author]]", Image: "person"},
		{Template: "[[words]], [[characters]]"},
		{Template: Separator},
		{Template: "[[application]]"},
		{Template: "[[version]]"},
		{Template: "[[file-size]]"},
	}
}

func defaultWordMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[pages]]", Image: "doc"},
		{Template: "[[words]], [[characters]]"},
		{Template: "[[title]]"},
		{Template: "[[author]]", Image: "person"},
		{Template: Separator},
		{Template: "[[creation]]"},
		{Template: "[[modified]]"},
		{Template: "[[application]]"},
	}
}

func defaultExcelMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[sheets]]", Image: "xls"},
		{Template: "[[sheet-list]]"},
		{Template: "[[title]]"},
		{Template: "[[author]]", Image: "person"},
		{Template: Separator},
		{Template: "[[creation]]"},
		{Template: "[[application]]"},
	}
}

func defaultPowerpointMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[slides]]", Image: "ppt"},
		{Template: "[[words]], [[characters]]"},
		{Template: "[[title]]"},
		{Template: "[[author]]", Image: "person"},
		{Template: Separator},
		{Template: "[[creation]]"},
		{Template: "[[application]]"},
	}
}

func defaultModelMenu() []MenuItem {
	return []MenuItem{
		{Template: "[[mesh-count]], [[vertex]]", Image: "3d"},
		{Template: "[[meshes]]"},
		{Template: Separator},
		{Template: "[[normals]]", Image: "3d_normal"},
		{Template: "[[tangents]]", Image: "3d_tangent"},
		{Template: "[[tex-coords]]", Image: "3d_uv"},
		{Template: "[[vertex-color]]", Image: "3d_color"},
		{Template: "[[occlusion]]", Image: "3d_occlusion"},
	}
}
