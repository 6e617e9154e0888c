package roi

var Polygon = polygon
